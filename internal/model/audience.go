package model

// TargetAudience is one of the fixed recipient personas used to tailor tone
// and messaging.
type TargetAudience string

const (
	AudienceCitizens   TargetAudience = "시민"
	AudienceYouth      TargetAudience = "청년"
	AudienceElderly    TargetAudience = "노인"
	AudienceParents    TargetAudience = "학부모"
	AudienceBusinesses TargetAudience = "기업"
	AudienceOfficials  TargetAudience = "지자체 공무원"
	AudienceCouncil    TargetAudience = "의회/의원"
)

// AudienceProfile describes how content should address a persona.
type AudienceProfile struct {
	Tone  string `json:"tone"`
	Focus string `json:"focus"`
}

// audienceProfiles maps each persona to its messaging profile.
var audienceProfiles = map[TargetAudience]AudienceProfile{
	AudienceCitizens:   {Tone: "친근하고 이해하기 쉬운", Focus: "일상 생활 혜택, 실생활 변화"},
	AudienceYouth:      {Tone: "트렌디하고 직관적인", Focus: "기회 확대, 미래 전망"},
	AudienceElderly:    {Tone: "친절하고 따뜻한", Focus: "안전, 편의성, 접근성"},
	AudienceParents:    {Tone: "신뢰감 있고 구체적인", Focus: "자녀 안전, 교육 효과"},
	AudienceBusinesses: {Tone: "전문적이고 효율적인", Focus: "비용 절감, 규제 완화, ROI"},
	AudienceOfficials:  {Tone: "체계적이고 실무적인", Focus: "실행 가능성, 예산, 법적 근거"},
	AudienceCouncil:    {Tone: "설득적이고 근거 중심", Focus: "정책 효과, 국민 체감, 성과 지표"},
}

// Audiences returns all known personas in presentation order.
func Audiences() []TargetAudience {
	return []TargetAudience{
		AudienceCitizens,
		AudienceYouth,
		AudienceElderly,
		AudienceParents,
		AudienceBusinesses,
		AudienceOfficials,
		AudienceCouncil,
	}
}

// Valid reports whether a is a known persona.
func (a TargetAudience) Valid() bool {
	_, ok := audienceProfiles[a]
	return ok
}

// Profile returns the messaging profile for a persona. The zero profile is
// returned for unknown personas.
func (a TargetAudience) Profile() AudienceProfile {
	return audienceProfiles[a]
}
