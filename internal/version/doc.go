// Package version reports the wifiprov build version.
package version
