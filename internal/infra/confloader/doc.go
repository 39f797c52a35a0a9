// Package confloader loads layered configuration with koanf.
//
// Priority (highest to lowest):
//
//  1. Explicit overrides (command-line flags, via LoadMap)
//  2. Environment variables, including those set from a .env file
//  3. The YAML configuration file
//  4. Default values already present in the target struct
//
// Environment variables are matched against the koanf tags of the target,
// so JOBBOARD_SECURITY_JWT_SECRET resolves to security.jwt_secret even
// though the key itself contains an underscore.
//
// Watcher reports changes of the configuration file so that a running
// process can re-apply settings that are safe to change live.
package confloader
