package models

import "time"

// Profile is the grant-seeking organization. It is owned and created by the
// external profile store; this core treats it as immutable input for the
// duration of a workflow run.
type Profile struct {
	ID              string   `json:"id" yaml:"id"`
	DisplayName     string   `json:"display_name" yaml:"display_name"`
	EIN             string   `json:"ein,omitempty" yaml:"ein,omitempty"`
	Mission         string   `json:"mission" yaml:"mission"`
	NTEECodes       []string `json:"ntee_codes" yaml:"ntee_codes"`
	States          []string `json:"states" yaml:"states"`
	Nationwide      bool     `json:"nationwide" yaml:"nationwide"`
	FocusAreas      []string `json:"focus_areas" yaml:"focus_areas"`
	AnnualRevenue   float64  `json:"annual_revenue" yaml:"annual_revenue"`
	FundingPrefs    []string `json:"funding_preferences" yaml:"funding_preferences"`
	ApplicationOpen bool     `json:"application_policy_open" yaml:"application_policy_open"`
}

// SourceChannel classifies where an Opportunity was discovered.
type SourceChannel string

const (
	ChannelFederal    SourceChannel = "federal"
	ChannelState      SourceChannel = "state"
	ChannelFoundation SourceChannel = "foundation"
	ChannelCommercial SourceChannel = "commercial"
)

// Opportunity is a grant solicitation or foundation. It is created by
// discovery and mutated only by appending scored results — stage transitions
// are append-only, never destructive.
type Opportunity struct {
	ID            string        `json:"id"`
	Channel       SourceChannel `json:"channel"`
	SponsorEIN    string        `json:"sponsor_ein,omitempty"`
	AmountMin     float64       `json:"amount_min"`
	AmountMax     float64       `json:"amount_max"`
	Deadlines     []time.Time   `json:"deadlines,omitempty"`
	Keywords      []string      `json:"keywords"`
	RawPayload    []byte        `json:"raw_payload,omitempty"`
	ScoredResults []CompositeScore `json:"scored_results,omitempty"`
}

// AppendScore appends a CompositeScore, preserving the append-only invariant
// on Opportunity stage transitions.
func (o *Opportunity) AppendScore(cs CompositeScore) {
	o.ScoredResults = append(o.ScoredResults, cs)
}

// FormVariant enumerates the IRS form kinds this core parses.
type FormVariant string

const (
	Form990   FormVariant = "990"
	Form990PF FormVariant = "990-PF"
	Form990EZ FormVariant = "990-EZ"
)

// RoleCategory is the normalized classification of a person on a filing.
type RoleCategory string

const (
	RoleExecutive RoleCategory = "Executive"
	RoleBoard     RoleCategory = "Board"
	RoleStaff     RoleCategory = "Staff"
	RoleVolunteer RoleCategory = "Volunteer"
)

// Officer is a person listed on a filing.
type Officer struct {
	RawName        string       `json:"raw_name"`
	CanonicalName  string       `json:"canonical_name"`
	Title          string       `json:"title"`
	Role           RoleCategory `json:"role"`
	Compensation   float64      `json:"compensation"`
	HoursPerWeek   float64      `json:"hours_per_week"`
	IsOfficer      bool         `json:"is_officer"`
	IsDirector     bool         `json:"is_director"`
	VotingMember   bool         `json:"is_voting_member"`
	PolicyMaker    bool         `json:"is_policy_maker"`
	InfluenceScore float64      `json:"influence_score"`
}

// Grant is one recipient line on a 990-PF Part XV or 990 Schedule I.
type Grant struct {
	RecipientRawName       string  `json:"recipient_raw_name"`
	RecipientCanonicalName string  `json:"recipient_canonical_name"`
	RecipientEIN           string  `json:"recipient_ein,omitempty"`
	Amount                 float64 `json:"amount"`
	Purpose                string  `json:"purpose"`
	TaxYear                int     `json:"tax_year"`
	RecipientNTEE          string  `json:"recipient_ntee,omitempty"`
}

// Investment is one holding on a 990-PF Part II.
type Investment struct {
	Description   string  `json:"description"`
	BookValue     float64 `json:"book_value"`
	MarketValue   float64 `json:"market_value"`
}

// GovernanceIndicator captures the governance policy checkboxes on a filing.
type GovernanceIndicator struct {
	ConflictOfInterestPolicy bool `json:"conflict_of_interest_policy"`
	WhistleblowerPolicy      bool `json:"whistleblower_policy"`
	DocumentRetentionPolicy  bool `json:"document_retention_policy"`
}

// FinancialSummary is the filing's top-line financial figures.
type FinancialSummary struct {
	TotalRevenue       float64 `json:"total_revenue"`
	TotalExpenses      float64 `json:"total_expenses"`
	TotalAssets        float64 `json:"total_assets"`
	NetAssets          float64 `json:"net_assets"`
	Contributions      float64 `json:"contributions"`
	ProgramExpense     float64 `json:"program_expense"`
	AdminExpense       float64 `json:"admin_expense"`
	FundraisingExpense float64 `json:"fundraising_expense"`
}

// QualityAssessment summarizes how completely a filing was parsed.
type QualityAssessment struct {
	OverallSuccess        float64            `json:"overall_success"`
	SchemaValidationRate  float64            `json:"schema_validation_rate"`
	CategoryCompleteness  map[string]float64 `json:"category_completeness"`
	DataFreshness         float64            `json:"data_freshness"`
	ParseWarnings         []string           `json:"parse_warnings,omitempty"`
}

// Filing is one IRS form submission, immutable once parsed.
type Filing struct {
	EIN         string      `json:"ein"`
	TaxYear     int         `json:"tax_year"`
	Variant     FormVariant `json:"variant"`
	Officers    []Officer   `json:"officers"`
	Grants      []Grant     `json:"grants"`
	Investments []Investment `json:"investments"`
	Governance  GovernanceIndicator `json:"governance"`
	Financials  FinancialSummary    `json:"financials"`
	Quality     QualityAssessment   `json:"quality"`
	ParsedAt    time.Time           `json:"parsed_at"`
}

// EnrichmentStatus is the outcome of a C4 lookup.
type EnrichmentStatus string

const (
	EnrichmentOK     EnrichmentStatus = "OK"
	EnrichmentFailed EnrichmentStatus = "Failed"
)

// EnrichmentRecord is the result of a ProPublica Nonprofit Explorer lookup
// by EIN, cached with a TTL ≥ 7 days per C4's contract.
type EnrichmentRecord struct {
	EIN            string           `json:"ein"`
	Status         EnrichmentStatus `json:"status"`
	FailureReason  ErrorKind        `json:"failure_reason,omitempty"`
	OrgName        string           `json:"org_name,omitempty"`
	NTEECode       string           `json:"ntee_code,omitempty"`
	SubsectionCode string           `json:"subsection_code,omitempty"`
	RulingYear     int              `json:"ruling_year,omitempty"`
	LatestFilings  []FilingSummary  `json:"latest_filings,omitempty"`
	FetchedAt      time.Time        `json:"fetched_at"`
	Source         string           `json:"source"` // "api" or "html-fallback"
}

// FilingSummary is one entry from an organization's filing history as
// reported by ProPublica, not the full parsed Filing from C2.
type FilingSummary struct {
	TaxYear          int     `json:"tax_year"`
	FormType         string  `json:"form_type"`
	TotalRevenue     float64 `json:"total_revenue,omitempty"`
	TotalExpenses    float64 `json:"total_expenses,omitempty"`
	PDFURL           string  `json:"pdf_url,omitempty"`
	AccessionOrIndex string  `json:"accession_or_index,omitempty"`
}

// Fingerprint is the deterministic cache key for a tool invocation:
// hash(tool identifier, tool version, canonical input payload).
type Fingerprint string

// ToolResult is a cached tool invocation outcome.
type ToolResult struct {
	Fingerprint Fingerprint `json:"fingerprint"`
	ToolID      string      `json:"tool_id"`
	ToolVersion string      `json:"tool_version"`
	ProducedAt  time.Time   `json:"produced_at"`
	Payload     []byte      `json:"payload"`
	Cost        float64     `json:"cost"`
	Latency     time.Duration `json:"latency"`
	Success     bool        `json:"success"`
	ErrorKind   ErrorKind   `json:"error_kind,omitempty"`
}

// DimensionalScore is one scored dimension within a CompositeScore.
type DimensionalScore struct {
	Dimension   string  `json:"dimension"`
	Raw         float64 `json:"raw"`
	Weight      float64 `json:"weight"`
	Boost       float64 `json:"boost"`
	Weighted    float64 `json:"weighted"`
	DataQuality float64 `json:"data_quality"`
	Notes       string  `json:"notes,omitempty"`
}

// Recommendation is the ternary outcome of composite scoring.
type Recommendation string

const (
	RecommendPass    Recommendation = "Pass"
	RecommendAbstain Recommendation = "Abstain"
	RecommendFail    Recommendation = "Fail"
)

// CompositeScore is the rollup of DimensionalScores for a stage or track.
type CompositeScore struct {
	OpportunityID  string             `json:"opportunity_id"`
	Overall        float64            `json:"overall"`
	Confidence     float64            `json:"confidence"`
	Dimensions     []DimensionalScore `json:"dimensions"`
	StageOrTrack   string             `json:"stage_or_track"`
	AppliedBoosts  []string           `json:"applied_boosts,omitempty"`
	Recommendation Recommendation     `json:"recommendation"`
	AbstainTriggers []string          `json:"abstain_triggers,omitempty"`
	ScoredAt       time.Time          `json:"scored_at"`
}

// TriageStatus is the lifecycle of a TriageItem.
type TriageStatus string

const (
	TriageQueued    TriageStatus = "Queued"
	TriageInReview  TriageStatus = "InReview"
	TriageDecided   TriageStatus = "Decided"
	TriageEscalated TriageStatus = "Escalated"
	TriageExpired   TriageStatus = "Expired"
)

// TriageItem is an opportunity whose composite fell in the abstain band or
// triggered an abstain rule, queued for manual review.
type TriageItem struct {
	ID            string       `json:"id"`
	OpportunityID string       `json:"opportunity_id"`
	WorkflowRunID string       `json:"workflow_run_id"`
	Status        TriageStatus `json:"status"`
	Priority      float64      `json:"priority"`
	Decision      string       `json:"decision,omitempty"`
	Assignee      string       `json:"assignee,omitempty"`
	QueuedAt      time.Time    `json:"queued_at"`
}

// StepState is a workflow step's position in its state machine.
type StepState string

const (
	StepPending   StepState = "Pending"
	StepReady     StepState = "Ready"
	StepRunning   StepState = "Running"
	StepSucceeded StepState = "Succeeded"
	StepFailed    StepState = "Failed"
	StepCancelled StepState = "Cancelled"
	// StepSkipped marks a step with an ancestor that ended Failed, Cancelled,
	// Skipped, or BudgetExceeded, and that therefore never became runnable.
	StepSkipped StepState = "Skipped"
	// StepBudgetExceeded marks a step that became runnable but whose planned
	// cost would exceed the workflow's budget ceiling, distinct from
	// StepSkipped (its own dependents transition to StepSkipped, not this).
	StepBudgetExceeded StepState = "BudgetExceeded"
)

// StepRecord is the checkpointed state of one workflow step.
type StepRecord struct {
	StepID    string    `json:"step_id"`
	State     StepState `json:"state"`
	ResultRef string    `json:"result_ref,omitempty"`
	ErrorRef  string    `json:"error_ref,omitempty"`
	// Reason names why a terminal non-Succeeded state was reached (e.g.
	// "Timeout", "MissingInput", "Cancelled", "BudgetExceeded"), distinct
	// from ErrorRef which points at the underlying error detail.
	Reason    string    `json:"reason,omitempty"`
	Attempts  int       `json:"attempts"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WorkflowRun is one execution of a workflow definition.
type WorkflowRun struct {
	ID                  string                `json:"id"`
	WorkflowDefinitionID string               `json:"workflow_definition_id"`
	ProfileID           string                `json:"profile_id"`
	Inputs              map[string]interface{} `json:"inputs"`
	Steps               map[string]*StepRecord `json:"steps"`
	StartedAt           time.Time             `json:"started_at"`
	FinishedAt          time.Time             `json:"finished_at,omitempty"`
	CancellationReason  string                `json:"cancellation_reason,omitempty"`
}
