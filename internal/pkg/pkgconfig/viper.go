package pkgconfig

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//nolint:gochecknoglobals // read-only defaults
var defaults = map[string]any{
	"tz":                          "UTC",
	"log.level":                   "info",
	"server.address.http":         ":8080",
	"server.cors.allowed_origins": "*",
	"server.max_goroutine":        100,
}

// Viper is a Config implementation backed by github.com/spf13/viper.
type Viper struct {
	v *viper.Viper
}

// NewViper loads the YAML file at pathFile. The file type comes from its
// extension.
func NewViper(pathFile string) (*Viper, error) {
	v := viper.New()

	base := filepath.Base(pathFile)
	v.AddConfigPath(filepath.Dir(pathFile))
	v.SetConfigName(strings.TrimSuffix(base, filepath.Ext(base)))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	return &Viper{v: v}, nil
}

func (vc *Viper) GetInt(key string) int64 {
	return vc.v.GetInt64(key)
}

func (vc *Viper) GetBool(key string) bool {
	return vc.v.GetBool(key)
}

func (vc *Viper) GetString(key string) string {
	return vc.v.GetString(key)
}

// GetDuration parses values such as "30m" or "1h".
func (vc *Viper) GetDuration(key string) time.Duration {
	return vc.v.GetDuration(key)
}

// GetArray splits a comma separated value, dropping blank items. YAML
// sequences are returned as they are.
func (vc *Viper) GetArray(key string) []string {
	if _, ok := vc.v.Get(key).([]any); ok {
		return vc.v.GetStringSlice(key)
	}

	var out []string
	for _, item := range strings.Split(vc.v.GetString(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Close implements io.Closer for interface compatibility.
func (vc *Viper) Close() error {
	return nil
}
