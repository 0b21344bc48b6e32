package conf

import (
	"fmt"
	"os"
	"reflect"

	"github.com/jessevdk/go-flags"
	"github.com/spf13/viper"
)

// Opts are the command line flags. Each flag carries the configuration key
// it overrides; only flags given on the command line override anything.
type Opts struct {
	ConfigFile string `short:"C" long:"configfile" description:"Path to a YAML configuration file"`

	RemoteAddress string `short:"r" long:"remote-address" key:"p2p.remoteaddress" description:"Seed peer to start crawling from (ip:port)"`
	LocalAddress  string `short:"l" long:"local-address" key:"p2p.localaddress" description:"Local endpoint advertised in the version message (ip:port)"`
	Network       string `long:"network" key:"p2p.network" description:"Bitcoin network {mainnet, testnet3, regtest, signet}"`
	UserAgent     string `long:"user-agent" key:"p2p.useragent" description:"User agent advertised in the version message"`

	AddressLimit          int     `long:"address-limit" key:"crawl.addresslimit" description:"Number of peer addresses to collect"`
	ConnectionTimeout     int     `long:"connection-timeout" key:"crawl.connectiontimeout" description:"Seed connection timeout in seconds"`
	PeerConnectionTimeout int     `long:"peer-connection-timeout" key:"crawl.peerconnectiontimeout" description:"Connection timeout in seconds for peers after the seed"`
	PeerAddressCap        int     `long:"peer-address-cap" key:"crawl.peeraddresscap" description:"Stop a peer session after this many addresses"`
	MaxConcurrentSessions int     `long:"max-concurrent-sessions" key:"crawl.maxconcurrentsessions" description:"Max peer sessions in flight per round, 0 for no limit"`
	DialRate              float64 `long:"dial-rate" key:"crawl.dialrate" description:"Max new connections per second, 0 for no limit"`
	IdleTimeout           int     `long:"idle-timeout" key:"crawl.idletimeout" description:"Drop a peer silent for this many seconds, 0 to wait forever"`

	LogLevel  string   `short:"d" long:"loglevel" key:"log.level" description:"Logging level {emergency, alert, critical, error, warn, notice, info, debug}"`
	LogFile   string   `long:"logfile" key:"log.filename" description:"Log file, - for the console"`
	LogModule []string `long:"logmodule" key:"log.module" description:"Module to log, may be repeated (default all)"`

	MetricsListen string `long:"metrics-listen" key:"metrics.listen" description:"Serve prometheus metrics on this address"`
}

// InitArgs parses the command line, without the program name. Asking for
// help prints the usage and exits.
func InitArgs(args []string) (*Opts, *flags.Parser, error) {
	opts := new(Opts)
	parser := flags.NewParser(opts, flags.Default)
	rest, err := parser.ParseArgs(args)
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return nil, nil, err
	}
	if len(rest) > 0 {
		return nil, nil, fmt.Errorf("unexpected arguments %v", rest)
	}

	return opts, parser, nil
}

// apply overrides v with every flag that was given explicitly.
func (opts *Opts) apply(v *viper.Viper, parser *flags.Parser) {
	t := reflect.TypeOf(*opts)
	val := reflect.ValueOf(*opts)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		key := field.Tag.Get("key")
		if key == "" {
			continue
		}
		opt := parser.FindOptionByLongName(field.Tag.Get("long"))
		if opt == nil || !opt.IsSet() {
			continue
		}
		v.Set(key, val.Field(i).Interface())
	}
}

func (opts *Opts) String() string {
	return fmt.Sprintf("remote:%s network:%s limit:%d", opts.RemoteAddress, opts.Network, opts.AddressLimit)
}
