// Package shell runs the external programs the backup tasks drive.
//
// Tests and dry runs use the recording runner in the fake subpackage.
package shell

//go:generate mockery --case underscore --output shellmock --outpkg shellmock --name Runner
