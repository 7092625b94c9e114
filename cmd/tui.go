package cmd

import "vaultsearch/internal/tui"

func runTUI() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	return tui.Run(tui.Config{
		Input:    flagInput,
		Defaults: cfg,
	})
}
