package httptransport

// SessionResponse describes the identity behind the current request.
type SessionResponse struct {
	UserID   string `json:"user_id"`
	Identity string `json:"identity,omitempty"`
}

// AccessResponse is returned by gated probe routes once the policy passed.
type AccessResponse struct {
	Policy       string `json:"policy"`
	Outcome      string `json:"outcome"`
	UserID       string `json:"user_id"`
	Organization string `json:"organization,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
