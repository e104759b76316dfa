// Package tools implements the host-facing catalog operations,
// search_releases and get_release_details.
//
// Tools never fail toward the host. Validation problems, upstream errors and
// unexpected failures (panics included) all produce an empty or absent result
// plus a user-facing message on the Notifier side channel. Details of
// unexpected failures go to the logger only.
//
// A Registry describes both tools with JSON Schemas and invokes them from raw
// JSON arguments through the observe middleware.
package tools
