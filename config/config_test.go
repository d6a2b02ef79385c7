package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func getenvFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDetectPlatformOrder(t *testing.T) {
	cases := []struct {
		env  map[string]string
		want string
	}{
		{map[string]string{}, PlatformLocal},
		{map[string]string{"DYNO": "web.1", "KUBERNETES_PORT": "x"}, PlatformHeroku},
		{map[string]string{"RAILWAY_STATIC_URL": "a", "OKTETO_TOKEN": "b"}, PlatformRailway},
		{map[string]string{"OKTETO_TOKEN": "b", "KUBERNETES_PORT": "x"}, PlatformOkteto},
		{map[string]string{"KUBERNETES_PORT": "tcp://10.0.0.1:443", "HOSTNAME": "pod"}, PlatformQovery},
		{map[string]string{"HOSTNAME": "box", "USER": "codespace"}, PlatformCodespace},
		{map[string]string{"RUNNER_USER": "runner"}, PlatformGitHubActions},
		{map[string]string{"ANDROID_ROOT": "/system", "FLY_APP_NAME": "bot"}, PlatformTermux},
		{map[string]string{"FLY_APP_NAME": "bot"}, PlatformFly},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, DetectPlatform(getenvFrom(tc.env)), "env=%v", tc.env)
	}
}

func TestQoveryHash(t *testing.T) {
	h, ok := qoveryHash("QOVERY_REDIS_Z1A2B3_HOST")
	require.True(t, ok)
	require.Equal(t, "Z1A2B3", h)

	_, ok = qoveryHash("QOVERY_REDIS__HOST")
	require.False(t, ok)
	_, ok = qoveryHash("QOVERY_POSTGRES_Z1_HOST")
	require.False(t, ok)
}

// clearEnv blanks every variable Load reads so the host environment does
// not leak into assertions.
func clearEnv(t *testing.T) {
	for _, k := range []string{
		"REDIS_URI", "REDISHOST", "REDISPORT", "REDIS_PASSWORD", "REDISPASSWORD",
		"MONGO_URI", "MONGO_DB_NAME", "DATABASE_URL",
		"BOTDB_BACKEND", "BOTDB_LOCAL_DIR", "BOTDB_LOG_LEVEL", "BOTDB_CACHE_MAX_COST",
	} {
		t.Setenv(k, "")
	}
}

func TestFromViperDefaultsAndPasswordFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDISHOST", "cache.internal")
	t.Setenv("REDISPORT", "6380")
	t.Setenv("REDISPASSWORD", "s3cret")

	c, err := FromViper(NewViper(), nil)
	require.NoError(t, err)
	require.Equal(t, "cache.internal", c.RedisHost)
	require.Equal(t, 6380, c.RedisPort)
	require.Equal(t, "s3cret", c.RedisPassword)
	require.Equal(t, DefaultMongoDBName, c.MongoDBName)
	require.Equal(t, DefaultLocalDir, c.LocalDir)
	require.Equal(t, DefaultLogLevel, c.LogLevel)
	require.Equal(t, PlatformLocal, c.Platform)
	require.Nil(t, c.Qovery)

	t.Setenv("REDIS_PASSWORD", "preferred")
	c, err = FromViper(NewViper(), nil)
	require.NoError(t, err)
	require.Equal(t, "preferred", c.RedisPassword)
}

func TestFromViperRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDISPORT", "sixthousand")
	_, err := FromViper(NewViper(), nil)
	require.Error(t, err)

	clearEnv(t)
	t.Setenv("BOTDB_BACKEND", "etcd")
	_, err = FromViper(NewViper(), nil)
	require.Error(t, err)

	clearEnv(t)
	t.Setenv("BOTDB_CACHE_MAX_COST", "-1")
	_, err = FromViper(NewViper(), nil)
	require.Error(t, err)
}

func TestQoveryOverride(t *testing.T) {
	clearEnv(t)
	environ := []string{
		"KUBERNETES_PORT=tcp://10.0.0.1:443",
		"QOVERY_REDIS_Z9F1_HOST=z9f1.qovery.io",
		"QOVERY_REDIS_Z9F1_PORT=6379",
		"QOVERY_REDIS_Z9F1_PASSWORD=pw",
	}
	c, err := FromViper(NewViper(), environ)
	require.NoError(t, err)
	require.True(t, IsQovery(c.Platform))
	require.Equal(t, &QoveryRedis{Hash: "Z9F1", Host: "z9f1.qovery.io", Port: 6379, Password: "pw"}, c.Qovery)

	// not on Qovery: variables are ignored
	c, err = FromViper(NewViper(), environ[1:])
	require.NoError(t, err)
	require.Nil(t, c.Qovery)
}

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides a variable that is set, even to ""
	t.Setenv("MONGO_URI", "")
	os.Unsetenv("MONGO_URI")
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("MONGO_URI=mongodb://from-file\nDATABASE_URL=postgres://file\n"), 0o600))
	t.Setenv("DATABASE_URL", "postgres://env")

	c, err := Load(file, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "mongodb://from-file", c.MongoURI)
	require.Equal(t, "postgres://env", c.DatabaseURL)
}
