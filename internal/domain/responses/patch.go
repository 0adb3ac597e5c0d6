package responses

// Patch is a partial update to a response. Every field carries a set flag so
// "not provided" and "explicitly cleared" stay distinct: an unset field leaves
// the stored value alone, a set field with a nil value clears it.
type Patch struct {
	QuestionResponses    []QuestionResponse
	QuestionResponsesSet bool

	ComplianceStatus *ComplianceStatus

	Justification    *string
	JustificationSet bool

	MaturityLevel    *string
	MaturityLevelSet bool

	EvidencePath    *string
	EvidencePathSet bool

	EvidenceFilename    *string
	EvidenceFilenameSet bool

	AIRecommendation    *string
	AIRecommendationSet bool
}

// Empty reports whether the patch touches nothing.
func (p Patch) Empty() bool {
	return !p.QuestionResponsesSet && p.ComplianceStatus == nil &&
		!p.JustificationSet && !p.MaturityLevelSet &&
		!p.EvidencePathSet && !p.EvidenceFilenameSet && !p.AIRecommendationSet
}

// Apply merges the patch into r in place.
func (p Patch) Apply(r *Response) {
	if p.QuestionResponsesSet {
		r.QuestionResponses = p.QuestionResponses
	}
	if p.ComplianceStatus != nil {
		r.ComplianceStatus = *p.ComplianceStatus
	}
	if p.JustificationSet {
		r.Justification = deref(p.Justification)
	}
	if p.MaturityLevelSet {
		r.MaturityLevel = deref(p.MaturityLevel)
	}
	if p.EvidencePathSet {
		r.EvidencePath = deref(p.EvidencePath)
	}
	if p.EvidenceFilenameSet {
		r.EvidenceFilename = deref(p.EvidenceFilename)
	}
	if p.AIRecommendationSet {
		r.AIRecommendation = deref(p.AIRecommendation)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
