// Package normalisers turns stored documents into plain text.
//
// The pdf subpackage is the only format PaperMentor accepts. It shells out
// to poppler-utils rather than parsing PDF itself.
package normalisers
