// Package translation converts a session transcript into the target
// language using the free Google Translate endpoint.
package translation
