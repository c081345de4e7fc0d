package utils

import (
	"fmt"
	"io"
	"strings"

	"github.com/LilVoxy/db_restore/ETL/models"
)

// Console выводит ход переноса оператору
type Console struct {
	w io.Writer
}

// NewConsole создает консоль поверх w
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Printf печатает форматированную строку
func (c *Console) Printf(format string, v ...interface{}) {
	fmt.Fprintf(c.w, format, v...)
}

// Println печатает строку с переводом строки
func (c *Console) Println(v ...interface{}) {
	fmt.Fprintln(c.w, v...)
}

// Rule печатает разделительную линию
func (c *Console) Rule() {
	fmt.Fprintln(c.w, strings.Repeat("=", 60))
}

// Step печатает заголовок шага
func (c *Console) Step(title string) {
	fmt.Fprintf(c.w, "\n=== %s ===\n", title)
}

// Counts печатает количество записей по непустым категориям
func (c *Console) Counts(title string, dataset models.Dataset) {
	fmt.Fprintf(c.w, "  %s:\n", title)
	for _, category := range dataset.Keys() {
		fmt.Fprintf(c.w, "    - %s: %d records\n", category, dataset.Count(category))
	}
}
