package config

// APIConfig enables the HTTP endpoint serving the run log.
type APIConfig struct {
	// Addr is the listen address, e.g. ":8080". Empty disables the endpoint.
	Addr string `json:"addr"`
	// Token, when set, is required as a bearer token.
	Token string `json:"token"`
}
