package api

// Node is a monitored host.
type Node struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CPUSample is one CPU reading. CPU is a percentage and is not clamped.
type CPUSample struct {
	CPU       float64 `json:"cpu"`
	Timestamp string  `json:"timestamp"`
}

// cpuStatRaw is the shape the backend uses for CPU readings.
type cpuStatRaw struct {
	Value    float64 `json:"value"`
	DateTime string  `json:"date_time"`
}

func (r cpuStatRaw) sample() CPUSample {
	return CPUSample{CPU: r.Value, Timestamp: r.DateTime}
}

// RAMSample is one memory reading. Free and Total are unit-suffixed strings
// such as "3.20 GiB".
type RAMSample struct {
	Free      string `json:"free"`
	Total     string `json:"total"`
	Timestamp string `json:"timestamp"`
}

// Service names a service registered for a node.
type Service struct {
	ServiceName string `json:"service_name"`
}

// Service health values.
const (
	StatusUp    = "up"
	StatusDown  = "down"
	Unreachable = "Unreachable"
)

// ServiceStatus is the current health of one service on a node.
type ServiceStatus struct {
	ServiceName   string `json:"service_name"`
	Status        string `json:"status"`
	ServiceStatus string `json:"service_status"`
	ErrorMsg      string `json:"error_msg,omitempty"`
}

// Reachable reports whether the node answered the health probe at all.
func (s ServiceStatus) Reachable() bool {
	return s.ServiceStatus != Unreachable
}

// Up reports whether the service is reachable and running.
func (s ServiceStatus) Up() bool {
	return s.Reachable() && s.Status == StatusUp
}

// NodeInfo is static-ish metadata about a node. Uptime is in seconds.
type NodeInfo struct {
	SystemName    string `json:"system_name"`
	KernelVersion string `json:"kernel_version"`
	OSVersion     string `json:"os_version"`
	Uptime        int64  `json:"uptime"`
	CPUThreads    int    `json:"cpu_threads"`
	CPUVendor     string `json:"cpu_vendor"`
}

// LoginCredentials are sent to user_login.
type LoginCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the session token issued by user_login.
type LoginResponse struct {
	Token string `json:"token"`
}

// Endpoint names, relative to the configured base URL.
const (
	EndpointNodeList      = "get_node_list"
	EndpointLatestCPU     = "get_latest_cpu"
	EndpointLatestRAM     = "get_latest_ram"
	EndpointCPUStat       = "cpu_stat"
	EndpointRAMStat       = "ram_stat"
	EndpointNodeInfo      = "get_node_info"
	EndpointServiceStatus = "service_current_stat"
	EndpointNodeServices  = "node_services"
	EndpointLogin         = "user_login"
)
