// Package pkgconfig reads application settings. Code depends on the Config
// interface; Viper implements it on top of a YAML file with CHEMVIZ_*
// environment overrides, so CHEMVIZ_AUTH_USERS replaces auth.users.
package pkgconfig
