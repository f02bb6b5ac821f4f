package dto

// ESConnectionConfig describes a caller-supplied Elasticsearch cluster.
type ESConnectionConfig struct {
	Name     string `json:"name"`
	Host     string `json:"host" validate:"required"`
	Port     int    `json:"port" validate:"required"`
	Scheme   string `json:"scheme"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ConnectionTestResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	ClusterName string `json:"clusterName,omitempty"`
	Version     string `json:"version,omitempty"`
	Error       string `json:"error,omitempty"`
}

// ESExecutionRequest relays one raw command, "METHOD /endpoint" on the
// first line and an optional JSON body on the rest.
type ESExecutionRequest struct {
	Command    string             `json:"command" validate:"required"`
	Connection ESConnectionConfig `json:"connection" validate:"required"`
}

type ESExecutionResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	StatusCode   int    `json:"statusCode,omitempty"`
	ResponseBody string `json:"responseBody,omitempty"`
	Error        string `json:"error,omitempty"`
}
