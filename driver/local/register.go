package local

import "github.com/gobeaver/specscribe"

func init() {
	specscribe.RegisterDriver("local", func(cfg *specscribe.Config) (specscribe.FileSystem, error) {
		return New(cfg.LocalBasePath)
	})
}
