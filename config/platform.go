package config

import (
	"os"
	"strings"
)

// Hosting platforms reported by DetectPlatform.
const (
	PlatformHeroku        = "heroku"
	PlatformRailway       = "railway"
	PlatformOkteto        = "okteto"
	PlatformQovery        = "qovery | kubernetes"
	PlatformCodespace     = "codespace"
	PlatformGitHubActions = "github actions"
	PlatformTermux        = "termux"
	PlatformFly           = "fly.io"
	PlatformLocal         = "local"
)

// DetectPlatform guesses the hosting platform from marker variables. The
// first match wins, in the order below.
func DetectPlatform(getenv func(string) string) string {
	switch {
	case getenv("DYNO") != "":
		return PlatformHeroku
	case getenv("RAILWAY_STATIC_URL") != "":
		return PlatformRailway
	case getenv("OKTETO_TOKEN") != "":
		return PlatformOkteto
	case getenv("KUBERNETES_PORT") != "":
		return PlatformQovery
	case getenv("RUNNER_USER") != "" || getenv("HOSTNAME") != "":
		if getenv("USER") == "codespace" {
			return PlatformCodespace
		}
		return PlatformGitHubActions
	case getenv("ANDROID_ROOT") != "":
		return PlatformTermux
	case getenv("FLY_APP_NAME") != "":
		return PlatformFly
	}
	return PlatformLocal
}

// IsQovery reports whether platform names Qovery. Kubernetes hosts are
// reported as "qovery | kubernetes", so plain Kubernetes counts too.
func IsQovery(platform string) bool {
	return strings.Contains(strings.ToLower(platform), "qovery")
}

func osEnviron() []string { return os.Environ() }
