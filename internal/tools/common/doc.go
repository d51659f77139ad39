// Package common holds the types shared by every tool package: the Result
// envelope, the Handler signature, argument accessors and the
// instrumentation wrapper.
package common
