package reports

import "context"

// Renderer port: turns an assembled report into document bytes.
type Renderer interface {
	Render(ctx context.Context, rep *Report) ([]byte, error)
}
