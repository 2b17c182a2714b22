// Package programs almacena los archivos de programas subidos, extrae sus
// páginas y ejecuta la ingesta y el borrado en un pool de workers acotado.
package programs
