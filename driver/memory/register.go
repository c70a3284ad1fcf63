package memory

import "github.com/gobeaver/specscribe"

func init() {
	specscribe.RegisterDriver("memory", func(cfg *specscribe.Config) (specscribe.FileSystem, error) {
		return New(Config{MaxSize: cfg.MemoryMaxSize}), nil
	})
}
