// Package businessflow contains the upload and gallery use cases of the portfolio service.
package businessflow

// ClientMetadata holds client information attached to log lines of a request
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// String renders the metadata for log lines.
func (cm *ClientMetadata) String() string {
	if cm == nil {
		return "client=unknown"
	}
	return "ip=" + cm.IPAddress + " request_id=" + cm.RequestID + " ua=" + cm.UserAgent
}
