// Remote target configuration: which rtorrent daemons we know of and how to reach them.
package rtconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/function61/gokit/jsonfile"
)

const (
	configFilename = "pyrotorrent-config.json"

	// rtorrent's XML-RPC mountpoint when fronted by a web server
	defaultRPCPath = "/RPC2"
)

var ErrTargetNotFound = errors.New("target not found")

type TransportKind string

const (
	TransportHTTP TransportKind = "http"
	TransportSCGI TransportKind = "scgi"
)

// one configured rtorrent daemon. immutable after construction.
type RemoteTarget struct {
	Name       string        `json:"name"`
	Transport  TransportKind `json:"transport"`
	Host       string        `json:"host,omitempty"`
	Port       int           `json:"port,omitempty"`
	RPCPath    string        `json:"rpc_path,omitempty"`    // http only. empty => /RPC2
	UnixSocket string        `json:"unix_socket,omitempty"` // scgi only, mutually exclusive with host+port
}

func (r *RemoteTarget) Validate() error {
	switch r.Transport {
	case TransportHTTP:
		if r.Host == "" || r.Port == 0 {
			return fmt.Errorf("target %s: http transport requires host and port", r.Name)
		}
		if r.UnixSocket != "" {
			return fmt.Errorf("target %s: unix_socket is only valid for scgi transport", r.Name)
		}
	case TransportSCGI:
		tcp := r.Host != "" && r.Port != 0
		if tcp == (r.UnixSocket != "") { // exactly one addressing mode
			return fmt.Errorf("target %s: scgi transport requires either host+port or unix_socket", r.Name)
		}
	default:
		return fmt.Errorf("target %s: unknown transport: %s", r.Name, r.Transport)
	}

	return nil
}

// "http://host:port/RPC2"
func (r *RemoteTarget) URL() string {
	rpcPath := r.RPCPath
	if rpcPath == "" {
		rpcPath = defaultRPCPath
	}

	return fmt.Sprintf("http://%s:%d%s", r.Host, r.Port, rpcPath)
}

// dial address for SCGI over TCP
func (r *RemoteTarget) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type Config struct {
	Targets []RemoteTarget `json:"targets"`
}

func (c *Config) Validate() error {
	seen := map[string]bool{}

	for _, target := range c.Targets {
		if target.Name == "" {
			return errors.New("target with empty name")
		}
		if seen[target.Name] {
			return fmt.Errorf("duplicate target: %s", target.Name)
		}
		seen[target.Name] = true

		if err := target.Validate(); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) Target(name string) (*RemoteTarget, error) {
	for i, target := range c.Targets {
		if target.Name == name {
			return &c.Targets[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, name)
}

func ReadConfig() (*Config, error) {
	confPath, err := ConfigFilePath()
	if err != nil {
		return nil, fmt.Errorf("pyroTorrent config: %v", err)
	}

	return ReadConfigWithPath(confPath)
}

func ReadConfigWithPath(confPath string) (*Config, error) {
	conf := &Config{}
	if err := jsonfile.Read(confPath, conf, true); err != nil {
		return nil, fmt.Errorf("pyroTorrent config: %v", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("pyroTorrent config: %v", err)
	}

	return conf, nil
}

func WriteConfig(conf *Config) error {
	confPath, err := ConfigFilePath()
	if err != nil {
		return err
	}

	return jsonfile.Write(confPath, conf)
}

func ConfigFilePath() (string, error) {
	usersHomeDirectory, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(usersHomeDirectory, configFilename), nil
}
