package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// fileSection is one environment table of the config file, e.g.
//
//	[production]
//	port = "8080"
//	storage_driver = "postgres"
//	storage_dsn = "postgres://todos:secret@db:5432/todos"
type fileSection struct {
	Port          string `toml:"port"`
	StorageDriver string `toml:"storage_driver"`
	StorageDSN    string `toml:"storage_dsn"`
	FSDir         string `toml:"fs_dir"`
	GCSBucket     string `toml:"gcs_bucket"`
}

// applyFile overlays the section for cfg.Environment from the TOML file at path.
// Keys not present in the file leave cfg untouched.
func applyFile(cfg *ServerConfig, path string) error {
	var sections map[string]fileSection
	md, err := toml.DecodeFile(path, &sections)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown config keys: %v", undecoded)
	}

	section, ok := sections[string(cfg.Environment)]
	if !ok {
		return nil
	}

	if section.Port != "" {
		cfg.HTTP.Port = section.Port
	}
	if section.StorageDriver != "" {
		cfg.Storage.Driver = Driver(section.StorageDriver)
	}
	if section.StorageDSN != "" {
		cfg.Storage.DSN = section.StorageDSN
	}
	if section.FSDir != "" {
		cfg.Storage.FSDir = section.FSDir
	}
	if section.GCSBucket != "" {
		cfg.Storage.GCSBucket = section.GCSBucket
	}
	return nil
}
