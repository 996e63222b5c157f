package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ptt/boardd/bcache"
	"github.com/ptt/boardd/big5"
)

type BoarddConfig struct {
	// Bind lists listen addresses, "tcp:host:port" or "unix:path".
	Bind []string

	BBSHome   string
	BoardFile string
	BoardsDir string
	// ShardBoardDirs stores boards under <BoardsDir>/<first letter>/.
	ShardBoardDirs bool

	DisableUTF8     bool
	InCharAnsi      string
	LookaheadWindow int

	MaxConn         int
	MaxInflightIO   int
	MaxWaitIO       int
	MaxLineLength   int
	IdleTimeoutSecs int

	WatchBoardFile bool
	Hotboards      HotboardsConfig

	DebugBind  string
	HealthBind string
	// SitePrefix is used for links in Atom feeds served on DebugBind.
	SitePrefix            string
	AtomFeedTitleTemplate string

	RunAsUID int
	RunAsGID int
}

type HotboardsConfig struct {
	Static []int
	Redis  *bcache.RedisConfig
}

const (
	DefaultBind          = "tcp:127.0.0.1:5150"
	DefaultBBSHome       = "/home/bbs"
	DefaultInCharAnsi    = "after"
	DefaultMaxInflightIO = 64
	DefaultMaxWaitIO     = 1024
	DefaultMaxLineLength = 64 * 1024
	DefaultAtomFeedTitle = "{{.BrdName}} - {{.Title}}"
	DefaultHotboardsKey  = "hotboards"
)

var (
	ErrBadInCharAnsi = errors.New("in-char ansi placement must be after or before")
	ErrBadHotboards  = errors.New("static and redis hotboards are exclusive")
)

func (c *BoarddConfig) CheckAndFillDefaults() error {
	if len(c.Bind) == 0 {
		c.Bind = []string{DefaultBind}
	}

	if c.BBSHome == "" {
		c.BBSHome = DefaultBBSHome
	}
	if c.BoardFile == "" {
		c.BoardFile = filepath.Join(c.BBSHome, ".BRD")
	}
	if c.BoardsDir == "" {
		c.BoardsDir = filepath.Join(c.BBSHome, "boards")
	}

	switch strings.ToLower(c.InCharAnsi) {
	case "":
		c.InCharAnsi = DefaultInCharAnsi
	case "after", "before":
		c.InCharAnsi = strings.ToLower(c.InCharAnsi)
	default:
		return ErrBadInCharAnsi
	}
	if c.LookaheadWindow <= 0 {
		c.LookaheadWindow = big5.DefaultWindow
	}

	if c.MaxInflightIO <= 0 {
		c.MaxInflightIO = DefaultMaxInflightIO
	}
	if c.MaxWaitIO <= 0 {
		c.MaxWaitIO = DefaultMaxWaitIO
	}
	if c.MaxLineLength <= 0 {
		c.MaxLineLength = DefaultMaxLineLength
	}
	if c.MaxConn < 0 {
		c.MaxConn = 0
	}
	if c.IdleTimeoutSecs < 0 {
		c.IdleTimeoutSecs = 0
	}

	if c.Hotboards.Redis != nil {
		if len(c.Hotboards.Static) > 0 {
			return ErrBadHotboards
		}
		if c.Hotboards.Redis.Addr == "" {
			return errors.New("hotboards redis address not specified")
		}
		if c.Hotboards.Redis.Key == "" {
			c.Hotboards.Redis.Key = DefaultHotboardsKey
		}
	}

	if c.AtomFeedTitleTemplate == "" {
		c.AtomFeedTitleTemplate = DefaultAtomFeedTitle
	}
	return nil
}

func (c *BoarddConfig) Placement() big5.Placement {
	if c.InCharAnsi == "before" {
		return big5.Before
	}
	return big5.After
}

func (c *BoarddConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSecs) * time.Second
}

// loadConfig reads a JSON config file, or YAML if the name says so. A
// missing path yields the defaults.
func loadConfig(path string) (*BoarddConfig, error) {
	c := new(BoarddConfig)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, c)
		default:
			err = json.Unmarshal(data, c)
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := c.CheckAndFillDefaults(); err != nil {
		return nil, err
	}
	return c, nil
}
