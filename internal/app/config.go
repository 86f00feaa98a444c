package app

// Config holds runtime wiring options for building the app.
type Config struct {
	Home      string // config directory, e.g. $HOME/.quantumshield
	RelayAddr string // relay TCP address, e.g. 127.0.0.1:8443
	JWTSecret []byte // HMAC secret the local auth.JWTVerifier checks tokens against
}
