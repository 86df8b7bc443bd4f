package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Roster maps a QA sub-team number to the tech lead owning it.
type Roster map[int]string

// JWTConfig holds the token signing parameters. The token is the only
// session state; there is no server-side session store.
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// AppConfig is the process-wide configuration snapshot. It is built once by
// Load at startup and never mutated afterwards.
type AppConfig struct {
	JWT           JWTConfig
	CookieName    string
	CookieDomain  string
	OperatorToken string
	DebugErrors   bool
	AuthBcrypt    bool
	NotifyTo      []string
	Roster        Roster
}

var app *AppConfig

// defaultRoster is the QA sub-team ownership as of the last reorg. Override
// with QA_ROSTER so roster changes stay a config edit, not a deploy.
var defaultRoster = Roster{
	1: "JIJIN E H",
	2: "MURUGESAN P",
	3: "NIKHIL SEKHAR",
	4: "SMINA BENNY",
	5: "VISAGH S",
	6: "JOBY JOSE",
}

// LoadAppConfig reads the environment into the immutable AppConfig snapshot.
// Call once from main, after godotenv.
func LoadAppConfig() *AppConfig {
	expireHours, err := strconv.Atoi(os.Getenv("JWT_EXPIRE_HOURS"))
	if err != nil || expireHours <= 0 {
		expireHours = 8
	}

	issuer := os.Getenv("JWT_ISSUER")
	if issuer == "" {
		issuer = "qa-release-api"
	}
	audience := os.Getenv("JWT_AUDIENCE")
	if audience == "" {
		audience = "qa-release-portal"
	}

	cookieDomain := os.Getenv("COOKIE_DOMAIN")
	if cookieDomain == "" {
		// Share the cookie across ports on localhost in development.
		cookieDomain = "localhost"
	}

	var notifyTo []string
	for _, addr := range strings.Split(os.Getenv("QA_NOTIFY_TO"), ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			notifyTo = append(notifyTo, addr)
		}
	}

	app = &AppConfig{
		JWT: JWTConfig{
			Secret:   os.Getenv("JWT_SECRET"),
			Issuer:   issuer,
			Audience: audience,
			TTL:      time.Duration(expireHours) * time.Hour,
		},
		CookieName:    "jwtToken",
		CookieDomain:  cookieDomain,
		OperatorToken: os.Getenv("OPERATOR_TOKEN"),
		DebugErrors:   os.Getenv("DEBUG_ERRORS") == "true",
		AuthBcrypt:    os.Getenv("AUTH_BCRYPT") == "true",
		NotifyTo:      notifyTo,
		Roster:        loadRoster(),
	}

	if app.JWT.Secret == "" {
		log.Println("Warning: JWT_SECRET is not set, tokens will not survive restarts securely")
	}

	return app
}

// App returns the configuration snapshot built by LoadAppConfig.
func App() *AppConfig {
	if app == nil {
		log.Fatal("config.App called before config.LoadAppConfig")
	}
	return app
}

// DefaultRoster returns a copy of the built-in sub-team roster.
func DefaultRoster() Roster {
	r := make(Roster, len(defaultRoster))
	for k, v := range defaultRoster {
		r[k] = v
	}
	return r
}

// loadRoster parses QA_ROSTER (JSON object of sub-team number to tech lead
// name) and falls back to the built-in roster on absence or parse failure.
func loadRoster() Roster {
	raw := os.Getenv("QA_ROSTER")
	if raw == "" {
		return DefaultRoster()
	}

	var parsed map[string]string
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		log.Printf("Warning: invalid QA_ROSTER, using built-in roster: %v", err)
		return DefaultRoster()
	}

	roster := make(Roster, len(parsed))
	for k, v := range parsed {
		subTeam, err := strconv.Atoi(k)
		if err != nil || subTeam <= 0 || v == "" {
			log.Printf("Warning: ignoring QA_ROSTER entry %q=%q", k, v)
			continue
		}
		roster[subTeam] = v
	}
	if len(roster) == 0 {
		return DefaultRoster()
	}
	return roster
}
