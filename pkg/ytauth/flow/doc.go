// Package flow drives the Google installed-application OAuth consent flow
// for ytauth, supporting a local callback server variant and a console
// paste variant, with the token exchange delegated to golang.org/x/oauth2.
package flow
