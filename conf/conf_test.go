package conf

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/copernet/peercrawler/errcode"
	"github.com/copernet/peercrawler/net/wire"
	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v2"
)

type fileConfig struct {
	P2P struct {
		RemoteAddress string `yaml:"remoteaddress,omitempty"`
		Network       string `yaml:"network,omitempty"`
	} `yaml:"p2p"`
	Crawl struct {
		AddressLimit int `yaml:"addresslimit,omitempty"`
		IdleTimeout  int `yaml:"idletimeout,omitempty"`
	} `yaml:"crawl"`
	Log struct {
		Level  string   `yaml:"level,omitempty"`
		Module []string `yaml:"module,omitempty"`
	} `yaml:"log"`
}

func writeConfigFile(dir string, fc *fileConfig) string {
	data, err := yaml.Marshal(fc)
	So(err, ShouldBeNil)
	filename := filepath.Join(dir, fmt.Sprintf("conf_test%04d.yml", rand.Intn(9999)))
	So(os.WriteFile(filename, data, 0664), ShouldBeNil)
	return filename
}

func TestInitConfig(t *testing.T) {
	Convey("Given no configuration sources", t, func() {
		config, err := InitConfig(nil)

		Convey("Defaults apply", func() {
			So(err, ShouldBeNil)
			So(config.P2P.RemoteAddress, ShouldEqual, "79.56.220.96:8333")
			So(config.P2P.LocalAddress, ShouldEqual, "0.0.0.0:8333")
			So(config.P2P.Network, ShouldEqual, "mainnet")
			So(config.P2P.UserAgent, ShouldEqual, "/Satoshi:25.0.0/")
			So(config.Crawl.AddressLimit, ShouldEqual, 50)
			So(config.Crawl.ConnectionTimeout, ShouldEqual, 10)
			So(config.Crawl.PeerConnectionTimeout, ShouldEqual, 10)
			So(config.Crawl.PeerAddressCap, ShouldEqual, 5000)
			So(config.Crawl.MaxConcurrentSessions, ShouldEqual, 0)
			So(config.Crawl.DialRate, ShouldEqual, 0.0)
			So(config.Crawl.IdleTimeout, ShouldEqual, 30)
			So(config.Log.Level, ShouldEqual, "info")
			So(config.Log.FileName, ShouldEqual, "peercrawler.log")
			So(config.Log.Module, ShouldBeEmpty)
			So(config.Metrics.Listen, ShouldEqual, "")
			So(Cfg, ShouldEqual, config)
		})

		Convey("Derived values are typed", func() {
			So(config.SeedAddress().String(), ShouldEqual, "79.56.220.96:8333")
			So(config.LocalAddr().Port(), ShouldEqual, uint16(8333))
			So(config.BitcoinNet(), ShouldEqual, wire.MainNet)
			So(config.SeedTimeout(), ShouldEqual, 10*time.Second)
			So(config.PeerTimeout(), ShouldEqual, 10*time.Second)
			So(config.IdleTimeout(), ShouldEqual, 30*time.Second)
		})
	})

	Convey("Given a config file", t, func() {
		fc := &fileConfig{}
		fc.P2P.RemoteAddress = "1.2.3.4:18333"
		fc.P2P.Network = "testnet3"
		fc.Crawl.AddressLimit = 200
		fc.Crawl.IdleTimeout = 5
		fc.Log.Level = "debug"
		fc.Log.Module = []string{"peer", "crawler"}
		filename := writeConfigFile(t.TempDir(), fc)

		Convey("File values override defaults", func() {
			config, err := InitConfig([]string{"--configfile", filename})
			So(err, ShouldBeNil)
			So(config.P2P.RemoteAddress, ShouldEqual, "1.2.3.4:18333")
			So(config.BitcoinNet(), ShouldEqual, wire.TestNet3)
			So(config.Crawl.AddressLimit, ShouldEqual, 200)
			So(config.Crawl.IdleTimeout, ShouldEqual, 5)
			So(config.Crawl.PeerAddressCap, ShouldEqual, 5000)
			So(config.Log.Level, ShouldEqual, "debug")
			So(config.Log.Module, ShouldResemble, []string{"peer", "crawler"})
		})

		Convey("Environment overrides the file", func() {
			os.Setenv("CRAWLER_CRAWL_ADDRESSLIMIT", "300")
			os.Setenv("CRAWLER_CRAWL_DIALRATE", "2.5")

			config, err := InitConfig([]string{"-C", filename})
			So(err, ShouldBeNil)
			So(config.Crawl.AddressLimit, ShouldEqual, 300)
			So(config.Crawl.DialRate, ShouldEqual, 2.5)

			Convey("And flags override the environment", func() {
				config, err := InitConfig([]string{"-C", filename, "--address-limit", "7", "-r", "5.6.7.8:8333"})
				So(err, ShouldBeNil)
				So(config.Crawl.AddressLimit, ShouldEqual, 7)
				So(config.P2P.RemoteAddress, ShouldEqual, "5.6.7.8:8333")
				So(config.Crawl.DialRate, ShouldEqual, 2.5)
			})
		})

		Convey("An explicit zero flag still overrides", func() {
			config, err := InitConfig([]string{"-C", filename, "--address-limit=0"})
			So(err, ShouldBeNil)
			So(config.Crawl.AddressLimit, ShouldEqual, 0)
		})

		Reset(func() {
			os.Unsetenv("CRAWLER_CRAWL_ADDRESSLIMIT")
			os.Unsetenv("CRAWLER_CRAWL_DIALRATE")
		})
	})

	Convey("Given a missing config file", t, func() {
		_, err := InitConfig([]string{"--configfile", filepath.Join(t.TempDir(), "absent.yml")})
		So(errcode.IsErrorCode(err, errcode.InvalidOption), ShouldBeTrue)
	})
}

func TestValidate(t *testing.T) {
	Convey("Given invalid settings", t, func() {
		tests := []struct {
			args []string
			code errcode.ConfigErr
		}{
			{[]string{"-r", "not-an-endpoint"}, errcode.InvalidAddress},
			{[]string{"-r", "1.2.3.4"}, errcode.InvalidAddress},
			{[]string{"-l", "0.0.0.0:99999"}, errcode.InvalidAddress},
			{[]string{"--network", "dogecoin"}, errcode.InvalidOption},
			{[]string{"--address-limit=-1"}, errcode.InvalidOption},
			{[]string{"--connection-timeout=-5"}, errcode.InvalidOption},
			{[]string{"--dial-rate=-0.5"}, errcode.InvalidOption},
			{[]string{"-d", "verbose"}, errcode.InvalidOption},
			{[]string{"--metrics-listen", "localhost"}, errcode.InvalidAddress},
			{[]string{"--metrics-listen", ":http"}, errcode.InvalidAddress},
			{[]string{"--metrics-listen", "metrics.invalid:9100"}, errcode.InvalidAddress},
			{[]string{"--no-such-flag"}, errcode.InvalidOption},
			{[]string{"stray"}, errcode.InvalidOption},
		}

		for _, test := range tests {
			_, err := InitConfig(test.args)
			So(err, ShouldNotBeNil)
			So(errcode.IsErrorCode(err, test.code), ShouldBeTrue)
		}
	})

	Convey("Given valid edge values", t, func() {
		config, err := InitConfig([]string{
			"--address-limit", "0",
			"--idle-timeout", "0",
			"--network", "regtest",
			"--metrics-listen", "127.0.0.1:9100",
			"--logmodule", "peer", "--logmodule", "crawler",
			"--logfile", "-",
		})
		So(err, ShouldBeNil)
		So(config.Crawl.AddressLimit, ShouldEqual, 0)
		So(config.IdleTimeout(), ShouldEqual, time.Duration(0))
		So(config.BitcoinNet(), ShouldEqual, wire.RegTest)
		So(config.Metrics.Listen, ShouldEqual, "127.0.0.1:9100")
		So(config.Log.Module, ShouldResemble, []string{"peer", "crawler"})
		So(config.Log.FileName, ShouldEqual, "-")
	})

	Convey("Given a metrics listen address without a host", t, func() {
		for _, listen := range []string{":9100", "[::1]:9100", "localhost:9100"} {
			config, err := InitConfig([]string{"--metrics-listen", listen})
			So(err, ShouldBeNil)
			So(config.Metrics.Listen, ShouldEqual, listen)
		}
	})
}
