package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/axondata/go-svcspec"
)

// Configuration keys
const (
	keyStagingDir     = "layout.staging_dir"
	keyActiveDir      = "layout.active_dir"
	keySvcPath        = "layout.svc_path"
	keyMultilogPath   = "layout.multilog_path"
	keyTestPath       = "layout.test_path"
	keyPurgePath      = "layout.purge_path"
	keySetuidgidPath  = "layout.setuidgid_path"
	keyEnvuidgidPath  = "layout.envuidgid_path"
	keySuPath         = "layout.su_path"
	keyPrimaryName    = "layout.primary_backend.name"
	keyPrimaryScope   = "layout.primary_backend.scope"
	keyAlternateName  = "layout.alternate_backend.name"
	keyAlternateScope = "layout.alternate_backend.scope"
	keyConcurrency    = "concurrency"
	keyLogLevel       = "log.level"
	keyLogFormat      = "log.format"
)

// EnvPrefix prefixes environment overrides, e.g. SVCSPEC_LAYOUT_STAGING_DIR
const EnvPrefix = "SVCSPEC"

// newViper returns a viper instance with layout defaults and environment
// overrides applied
func newViper() *viper.Viper {
	v := viper.New()

	d := svcspec.DefaultLayout()
	v.SetDefault(keyStagingDir, d.StagingDir)
	v.SetDefault(keyActiveDir, d.ActiveDir)
	v.SetDefault(keySvcPath, d.SvcPath)
	v.SetDefault(keyMultilogPath, d.MultilogPath)
	v.SetDefault(keyTestPath, d.TestPath)
	v.SetDefault(keyPurgePath, d.PurgePath)
	v.SetDefault(keySetuidgidPath, d.SetuidgidPath)
	v.SetDefault(keyEnvuidgidPath, d.EnvuidgidPath)
	v.SetDefault(keySuPath, d.SuPath)
	v.SetDefault(keyPrimaryName, d.PrimaryBackend.Name)
	v.SetDefault(keyPrimaryScope, d.PrimaryBackend.Scope.String())
	v.SetDefault(keyAlternateName, d.AlternateBackend.Name)
	v.SetDefault(keyAlternateScope, d.AlternateBackend.Scope.String())
	v.SetDefault(keyConcurrency, 10)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// readConfig loads the config file, if one was given
func readConfig(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	return nil
}

// layoutFromViper builds the layout from defaults, config file and environment
func layoutFromViper(v *viper.Viper) (svcspec.Layout, error) {
	primaryScope, err := svcspec.ParseGrantScope(v.GetString(keyPrimaryScope))
	if err != nil {
		return svcspec.Layout{}, fmt.Errorf("%s: %w", keyPrimaryScope, err)
	}
	alternateScope, err := svcspec.ParseGrantScope(v.GetString(keyAlternateScope))
	if err != nil {
		return svcspec.Layout{}, fmt.Errorf("%s: %w", keyAlternateScope, err)
	}

	layout := svcspec.Layout{
		StagingDir:    v.GetString(keyStagingDir),
		ActiveDir:     v.GetString(keyActiveDir),
		SvcPath:       v.GetString(keySvcPath),
		MultilogPath:  v.GetString(keyMultilogPath),
		TestPath:      v.GetString(keyTestPath),
		PurgePath:     v.GetString(keyPurgePath),
		SetuidgidPath: v.GetString(keySetuidgidPath),
		EnvuidgidPath: v.GetString(keyEnvuidgidPath),
		SuPath:        v.GetString(keySuPath),
		PrimaryBackend: svcspec.GrantBackend{
			Name:  v.GetString(keyPrimaryName),
			Scope: primaryScope,
		},
		AlternateBackend: svcspec.GrantBackend{
			Name:  v.GetString(keyAlternateName),
			Scope: alternateScope,
		},
	}

	if err := layout.Validate(); err != nil {
		return svcspec.Layout{}, err
	}
	return layout, nil
}
