package api

// HealthResponse is the backend health check payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
}

// BusinessData identifies a business handed to the SDR and email agents.
type BusinessData struct {
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone,omitempty"`
	Address        string         `json:"address,omitempty"`
	Industry       string         `json:"industry,omitempty"`
	BusinessType   string         `json:"business_type,omitempty"`
	Website        string         `json:"website,omitempty"`
	AdditionalInfo map[string]any `json:"additional_info,omitempty"`
}

// BusinessLead is a discovered lead with scoring metadata.
type BusinessLead struct {
	BusinessData
	ID              string  `json:"id,omitempty"`
	ConfidenceScore float64 `json:"confidence_score,omitempty"`
	Source          string  `json:"source,omitempty"`
	CreatedAt       string  `json:"created_at,omitempty"`
	UpdatedAt       string  `json:"updated_at,omitempty"`
}

// LeadSearchRequest is the body for the lead finder agent.
type LeadSearchRequest struct {
	Location     string `json:"location"`
	BusinessType string `json:"business_type,omitempty"`
	Radius       int    `json:"radius,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}

// LeadSearchResponse is the lead finder agent's result.
type LeadSearchResponse struct {
	Success      bool              `json:"success"`
	Message      string            `json:"message"`
	Leads        []BusinessLead    `json:"leads"`
	TotalFound   int               `json:"total_found"`
	SearchParams LeadSearchRequest `json:"search_params"`
}

// EmailRequest is a direct email send.
type EmailRequest struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	IsHTML  bool   `json:"is_html,omitempty"`
}

// EmailResponse confirms an email send.
type EmailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
}

// EmailAgentRequest asks the email agent to compose and send an outreach
// email from research output.
type EmailAgentRequest struct {
	BusinessData   BusinessData `json:"business_data"`
	ResearchResult string       `json:"research_result"`
	Proposal       string       `json:"proposal"`
}

// WorkflowResults carries the per-agent outputs of an SDR run.
type WorkflowResults struct {
	Research       string `json:"research,omitempty"`
	Proposal       string `json:"proposal,omitempty"`
	Call           any    `json:"call,omitempty"`
	Classification string `json:"classification,omitempty"`
	Email          any    `json:"email,omitempty"`
}

// SDRWorkflowResponse is the synchronous SDR workflow result.
type SDRWorkflowResponse struct {
	Success        bool            `json:"success"`
	Message        string          `json:"message"`
	BusinessData   BusinessData    `json:"business_data"`
	Results        WorkflowResults `json:"results"`
	WorkflowStatus string          `json:"workflow_status"`
}

// MainWorkflowRequest is the body for the non-streaming main agent workflow.
type MainWorkflowRequest struct {
	City         string `json:"city"`
	BusinessType string `json:"business_type,omitempty"`
	MaxResults   int    `json:"max_results,omitempty"`
	SearchRadius int    `json:"search_radius,omitempty"`
	EnableSDR    bool   `json:"enable_sdr"`
}

// MainWorkflowResponse acknowledges a main agent workflow run.
type MainWorkflowResponse struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	SessionID string         `json:"session_id,omitempty"`
	Results   map[string]any `json:"results,omitempty"`
}

// AgentInfo describes one agent's readiness.
type AgentInfo struct {
	Status      string `json:"status"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	SenderEmail string `json:"sender_email,omitempty"`
}

// AgentEnvironment reports which backend integrations are configured.
type AgentEnvironment struct {
	GmailConfigured    bool `json:"gmail_configured"`
	CerebrasConfigured bool `json:"cerebras_configured"`
	MongoDBConfigured  bool `json:"mongodb_configured"`
}

// AgentStatusResponse is the aggregate agent readiness payload.
type AgentStatusResponse struct {
	Success     bool                 `json:"success"`
	Agents      map[string]AgentInfo `json:"agents"`
	Environment AgentEnvironment     `json:"environment"`
}

// Session is one recorded workflow run on the backend.
type Session struct {
	SessionID    string `json:"session_id"`
	City         string `json:"city"`
	BusinessType string `json:"business_type"`
	MaxResults   int    `json:"max_results"`
	SearchRadius int    `json:"search_radius"`
	Status       string `json:"status"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time,omitempty"`
	LeadsFound   int    `json:"leads_found,omitempty"`
}

// BusinessLeadDocument is a lead as stored by the backend database.
type BusinessLeadDocument struct {
	ID           string  `json:"id"`
	SessionID    string  `json:"session_id,omitempty"`
	Name         string  `json:"name"`
	Email        string  `json:"email,omitempty"`
	Phone        string  `json:"phone,omitempty"`
	Address      string  `json:"address,omitempty"`
	Website      string  `json:"website,omitempty"`
	Industry     string  `json:"industry,omitempty"`
	BusinessType string  `json:"business_type,omitempty"`
	Rating       float64 `json:"rating,omitempty"`
	CreatedAt    string  `json:"created_at,omitempty"`
}

// LeadsParams filters the paginated lead listing.
type LeadsParams struct {
	Limit         int
	Offset        int
	WithEmailOnly bool
}

// LeadsPage is one page of the lead listing, flattened from the backend's
// nested pagination envelope.
type LeadsPage struct {
	Leads   []BusinessLeadDocument `json:"leads"`
	Total   int                    `json:"total"`
	Limit   int                    `json:"limit"`
	Offset  int                    `json:"offset"`
	HasMore bool                   `json:"has_more"`
}

// leadsEnvelope is the wire shape of GET /api/v1/leads/all.
type leadsEnvelope struct {
	Leads      []BusinessLeadDocument `json:"leads"`
	Pagination struct {
		Total   int  `json:"total"`
		Limit   int  `json:"limit"`
		Offset  int  `json:"offset"`
		HasMore bool `json:"has_more"`
	} `json:"pagination"`
}
