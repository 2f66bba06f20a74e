// Package docx provides a Normaliser for filings drafted in Word.
// Text is read from word/document.xml in document order: each paragraph
// and table row becomes one line and table cells are tab separated.
package docx
