// Package render holds the presentation-side helpers shared by hosts: deciding
// which engine errors are displayable (touched or submitted fields), building
// the submission payload from a valid state, and encoding it.
package render
