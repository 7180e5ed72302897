// Package pkgconfig reads application configuration.
//
// Modules depend on the Config interface. The Viper implementation reads a
// YAML file and lets environment variables override any key, with dots
// replaced by underscores (modules.series.upload_ttl -> MODULES_SERIES_UPLOAD_TTL).
// Keys missing from both fall back to the defaults registered in NewViper.
package pkgconfig
