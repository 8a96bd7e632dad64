package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Server   Server   `koanf:"server"`
	Session  Session  `koanf:"session"`
	Database Database `koanf:"db"`
	Storage  Storage  `koanf:"storage"`
	Admin    Admin    `koanf:"admin"`
	Import   Import   `koanf:"import"`
}

type Server struct {
	Addr string `koanf:"addr"`
}

type Session struct {
	Key    string `koanf:"key"`
	Secure bool   `koanf:"secure"`
}

type Database struct {
	Path string `koanf:"path"`
}

type Storage struct {
	Dir            string `koanf:"dir"`
	BaseURL        string `koanf:"baseurl"`
	MaxUploadBytes int64  `koanf:"maxuploadbytes"`
}

// Admin holds the platform administrator credentials. The password is stored
// as a bcrypt hash, never in plain text.
type Admin struct {
	Email        string `koanf:"email"`
	PasswordHash string `koanf:"passwordhash"`
}

// Import holds the defaults applied to venues auto-created by the CSV import.
type Import struct {
	DefaultLocation   string `koanf:"defaultlocation"`
	PlaceholderDomain string `koanf:"placeholderdomain"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Server: Server{
			Addr: ":8181",
		},
		Session: Session{
			Key:    "dev-only-session-key",
			Secure: false,
		},
		Database: Database{
			Path: "./whatson.db",
		},
		Storage: Storage{
			Dir:            "./media",
			BaseURL:        "/media",
			MaxUploadBytes: 10 << 20,
		},
		Import: Import{
			DefaultLocation:   "Romiley",
			PlaceholderDomain: "placeholder.com",
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "WHATSON_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "WHATSON_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
