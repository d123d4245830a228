// SPDX-License-Identifier: MPL-2.0

// Package config loads topomap configuration with Viper, using CUE as the
// file format.
//
// A file is looked up at the --config path, then ./topomap.cue, then
// config.cue in the user configuration directory ($XDG_CONFIG_HOME/topomap on
// Linux, ~/Library/Application Support/topomap on macOS, %APPDATA%\topomap on
// Windows). The file is unified with the embedded config_schema.cue #Config
// before it is merged over the defaults. TOPOMAP_* environment variables
// override both, with "." in keys replaced by "_" (TOPOMAP_OUTPUT_FORMAT).
package config
