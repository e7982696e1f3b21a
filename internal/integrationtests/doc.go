// Package integrationtests runs complete scripts through the application
// layer, from HCL files on disk to the final variable store.
package integrationtests
