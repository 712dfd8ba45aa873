package daemon

// Version is the API version. It should be bumped any time the API changes.
const Version = 1

// Methods exposed by the daemon.
const (
	methodVersion = "daemon/version"
	methodPid     = "daemon/pid"
	methodGet     = "store/get"
	methodSet     = "store/set"
)

// Error codes used in responses, in the range JSON-RPC reserves for
// implementation-defined server errors.
const (
	codeNoKey      = -32000
	codeStoreError = -32001
)

// Requests and responses exchanged between the client and the daemon.

type versionResponse struct {
	Version int `json:"version"`
}

type pidResponse struct {
	Pid int `json:"pid"`
}

type getRequest struct {
	Key string `json:"key"`
}

type getResponse struct {
	Value string `json:"value"`
}

type setRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
