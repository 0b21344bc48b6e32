package conf

import (
	"reflect"
	"strings"

	"github.com/copernet/peercrawler/errcode"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	tagName   = "default"
	envPrefix = "crawler"
)

var Cfg *Configuration

// Configuration is the merged result of defaults, the configuration file,
// CRAWLER_* environment variables and command line flags, in increasing
// order of precedence. Keys are the lower-cased section and field names,
// e.g. crawl.addresslimit or CRAWLER_CRAWL_ADDRESSLIMIT.
type Configuration struct {
	P2P struct {
		RemoteAddress string `default:"79.56.220.96:8333"`
		LocalAddress  string `default:"0.0.0.0:8333"`
		Network       string `default:"mainnet"`
		UserAgent     string `default:"/Satoshi:25.0.0/"`
	}
	Crawl struct {
		AddressLimit          int     `default:"50"`
		ConnectionTimeout     int     `default:"10"` // seconds, seed only
		PeerConnectionTimeout int     `default:"10"` // seconds
		PeerAddressCap        int     `default:"5000"`
		MaxConcurrentSessions int     `default:"0"`
		DialRate              float64 `default:"0"`  // dials per second
		IdleTimeout           int     `default:"30"` // seconds
	}
	Log struct {
		Level    string `default:"info"`
		FileName string `default:"peercrawler.log"`
		Module   []string
	}
	Metrics struct {
		Listen string
	}
}

// InitConfig parses args, merges every configuration source and validates
// the result. The merged configuration is also stored in Cfg.
func InitConfig(args []string) (*Configuration, error) {
	opts, parser, err := InitArgs(args)
	if err != nil {
		return nil, errcode.NewWithCause(errcode.InvalidOption, err)
	}

	v := viper.New()
	setDefaults(v, reflect.TypeOf(Configuration{}), "")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errcode.NewWithCause(errcode.InvalidOption,
				errors.Wrapf(err, "read config file %s", opts.ConfigFile))
		}
	}

	opts.apply(v, parser)

	config := &Configuration{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errcode.NewWithCause(errcode.InvalidOption, errors.Wrap(err, "decode configuration"))
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	Cfg = config
	return config, nil
}

// setDefaults registers the default tag of every field, nested structs
// included, so that each key is known to viper even without a default.
func setDefaults(v *viper.Viper, t reflect.Type, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		key := strings.ToLower(field.Name)
		if prefix != "" {
			key = prefix + "." + key
		}
		if field.Type.Kind() == reflect.Struct {
			setDefaults(v, field.Type, key)
			continue
		}
		v.SetDefault(key, field.Tag.Get(tagName))
	}
}
