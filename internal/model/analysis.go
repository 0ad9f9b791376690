package model

// AnalysisRequest holds the inputs for a plan generation run.
type AnalysisRequest struct {
	Title          string         `json:"title"`
	Category       string         `json:"category"`
	TargetAudience TargetAudience `json:"target_audience"`
	Description    string         `json:"description"`
	Keywords       string         `json:"keywords,omitempty"`
	Constraints    string         `json:"constraints,omitempty"`
}

// Analysis is the structured marketing/execution plan returned by the model.
// Field names match the JSON schema requested in the planning prompt.
type Analysis struct {
	PolicyPlanning        PolicyPlanning        `json:"policy_planning"`
	ExecutionPlan         ExecutionPlan         `json:"execution_plan"`
	CommunicationStrategy CommunicationStrategy `json:"communication_strategy"`
	ContentBriefs         ContentBriefs         `json:"content_briefs"`
	MarketingMaterials    MarketingMaterials    `json:"marketing_materials"`
	PerformanceMetrics    PerformanceMetrics    `json:"performance_metrics"`
	StakeholderManagement StakeholderManagement `json:"stakeholder_management"`
}

// PolicyPlanning covers objective, target analysis and strategy.
type PolicyPlanning struct {
	Objective        string   `json:"objective"`
	TargetAnalysis   string   `json:"target_analysis"`
	KeyStrategies    []string `json:"key_strategies"`
	ExpectedOutcomes []string `json:"expected_outcomes"`
	Timeline         Timeline `json:"timeline"`
}

// Timeline describes the three rollout stages.
type Timeline struct {
	Preparation string `json:"preparation"`
	Pilot       string `json:"pilot"`
	Expansion   string `json:"expansion"`
}

// ExecutionPlan covers concrete actions, resources and risks.
type ExecutionPlan struct {
	ActionItems     []ActionItem `json:"action_items"`
	ResourcesNeeded Resources    `json:"resources_needed"`
	RiskManagement  []Risk       `json:"risk_management"`
}

// ActionItem is a single phase of the execution plan.
type ActionItem struct {
	Phase       string `json:"phase"`
	Action      string `json:"action"`
	Responsible string `json:"responsible"`
	Timeline    string `json:"timeline"`
}

// Resources lists what the execution plan requires.
type Resources struct {
	BudgetRange    string `json:"budget_range"`
	Personnel      string `json:"personnel"`
	Infrastructure string `json:"infrastructure"`
}

// Risk is a single risk item with its mitigation.
type Risk struct {
	Risk       string `json:"risk"`
	Impact     string `json:"impact"`
	Mitigation string `json:"mitigation"`
}

// CommunicationStrategy covers messaging and channels.
type CommunicationStrategy struct {
	KeyMessages            []string          `json:"key_messages"`
	Channels               []Channel         `json:"channels"`
	TargetSpecificMessages map[string]string `json:"target_specific_messages"`
}

// Channel describes one distribution channel.
type Channel struct {
	Channel     string `json:"channel"`
	ContentType string `json:"content_type"`
	Frequency   string `json:"frequency"`
}

// ContentBriefs holds the creative briefs for images and video.
type ContentBriefs struct {
	ImageBrief1 ImageBrief `json:"image_brief_1"`
	ImageBrief2 ImageBrief `json:"image_brief_2"`
	VideoBrief  VideoBrief `json:"video_brief"`
}

// ImageBrief is the creative brief for a single generated image.
type ImageBrief struct {
	Concept          string `json:"concept"`
	SceneDescription string `json:"scene_description"`
	VisualStyle      string `json:"visual_style"`
	KeyMessage       string `json:"key_message"`
}

// VideoBrief is the creative brief for the promotional video.
type VideoBrief struct {
	Duration     string       `json:"duration"`
	NarrativeArc string       `json:"narrative_arc"`
	Scenes       []VideoScene `json:"scenes"`
	StyleGuide   string       `json:"style_guide"`
	CallToAction string       `json:"call_to_action"`
}

// VideoScene is a single timed scene in the video brief.
type VideoScene struct {
	Timestamp string `json:"timestamp"`
	Scene     string `json:"scene"`
	Visuals   string `json:"visuals"`
	Audio     string `json:"audio"`
	Message   string `json:"message"`
}

// MarketingMaterials covers ready-to-use promotional copy.
type MarketingMaterials struct {
	Slogan           string       `json:"slogan"`
	Tagline          string       `json:"tagline"`
	ElevatorPitch    string       `json:"elevator_pitch"`
	PressRelease     string       `json:"press_release"`
	SocialMediaPosts []SocialPost `json:"social_media_posts"`
	FAQ              []FAQItem    `json:"faq"`
}

// SocialPost is a single platform-specific post.
type SocialPost struct {
	Platform string   `json:"platform"`
	Content  string   `json:"content"`
	Hashtags []string `json:"hashtags"`
}

// FAQItem is one question/answer pair.
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// PerformanceMetrics covers the KPI framework and monitoring plan.
type PerformanceMetrics struct {
	KPIFramework        []KPI          `json:"kpi_framework"`
	SuccessCriteria     []string       `json:"success_criteria"`
	MonitoringPlan      MonitoringPlan `json:"monitoring_plan"`
	ImprovementTriggers []string       `json:"improvement_triggers"`
}

// KPI is one measurable indicator.
type KPI struct {
	Category          string `json:"category"`
	Metric            string `json:"metric"`
	MeasurementMethod string `json:"measurement_method"`
	TargetRange       string `json:"target_range"`
	DataSource        string `json:"data_source"`
}

// MonitoringPlan describes the measurement cadence.
type MonitoringPlan struct {
	Daily   string `json:"daily"`
	Weekly  string `json:"weekly"`
	Monthly string `json:"monthly"`
}

// StakeholderManagement covers stakeholder engagement and objections.
type StakeholderManagement struct {
	Stakeholders      []Stakeholder `json:"stakeholders"`
	ObjectionHandling []Objection   `json:"objection_handling"`
}

// Stakeholder is one interest group and its engagement strategy.
type Stakeholder struct {
	Group              string `json:"group"`
	Interests          string `json:"interests"`
	EngagementStrategy string `json:"engagement_strategy"`
}

// Objection is an anticipated objection and the prepared response.
type Objection struct {
	Objection string `json:"objection"`
	Response  string `json:"response"`
}
