// Package secret resolves credential values from configuration.
//
// A value is first expanded strictly: ${VAR} must exist in the environment,
// and $$ escapes a literal dollar. The result may then contain references of
// the form secretref:<provider>:<ref>, either as the whole value or inline:
//
//	secretref:env:DISCOGS_CONSUMER_SECRET
//	secretref:file:/run/secrets/discogs_secret
//
// EnvProvider and FileProvider are built in.
package secret
