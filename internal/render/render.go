// Package render отрисовывает QR-коды. Вычисление матрицы полностью
// делегировано внешней библиотеке go-qrcode; здесь только кодирование
// результата в PNG/JPEG/SVG, цвета и наложение логотипа.
package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// Форматы экспорта, которые умеет кодировать движок.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatSVG  = "svg"
)

// DefaultSize — сторона изображения в пикселях, если размер не задан.
const DefaultSize = 256

// Options — параметры отрисовки одного QR-кода.
type Options struct {
	Size            int    // Сторона изображения в пикселях
	DotColor        string // Цвет точек, #rrggbb
	BackgroundColor string // Цвет фона, #rrggbb
	ErrorLevel      string // Уровень коррекции L/M/Q/H
	Logo            string // base64 PNG-логотипа, пусто — без логотипа
}

// Engine кодирует QR-коды через внешнюю библиотеку.
type Engine struct{}

// NewEngine создает движок отрисовки.
func NewEngine() *Engine {
	return &Engine{}
}

// Encode отрисовывает payload в выбранном формате и возвращает байты
// изображения вместе с MIME-типом.
func (e *Engine) Encode(payload, format string, opts Options) ([]byte, string, error) {
	const op = "render.Encode"

	qr, err := qrcode.New(payload, recoveryLevel(opts.ErrorLevel))
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	qr.ForegroundColor = parseHexColor(opts.DotColor, color.Black)
	qr.BackgroundColor = parseHexColor(opts.BackgroundColor, color.White)

	size := opts.Size
	if size <= 0 {
		size = DefaultSize
	}

	switch format {
	case FormatPNG:
		img, err := e.compose(qr, size, opts.Logo)
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", op, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", fmt.Errorf("%s: %w", op, err)
		}
		return buf.Bytes(), "image/png", nil
	case FormatJPEG:
		img, err := e.compose(qr, size, opts.Logo)
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", op, err)
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
			return nil, "", fmt.Errorf("%s: %w", op, err)
		}
		return buf.Bytes(), "image/jpeg", nil
	case FormatSVG:
		return svgFromBitmap(qr.Bitmap(), opts), "image/svg+xml", nil
	default:
		return nil, "", fmt.Errorf("%s: unsupported format %q", op, format)
	}
}

// compose возвращает изображение QR-кода, при необходимости накладывая
// логотип по центру. Логотип занимает пятую часть стороны — с уровнем
// коррекции H перекрытие такого размера остаётся читаемым.
func (e *Engine) compose(qr *qrcode.QRCode, size int, logoB64 string) (image.Image, error) {
	base := qr.Image(size)
	if logoB64 == "" {
		return base, nil
	}

	raw, err := base64.StdEncoding.DecodeString(logoB64)
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}
	logo, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode logo image: %w", err)
	}

	canvas := image.NewRGBA(base.Bounds())
	draw.Draw(canvas, canvas.Bounds(), base, image.Point{}, draw.Src)

	side := size / 5
	offset := (size - side) / 2
	target := image.Rect(offset, offset, offset+side, offset+side)
	drawScaled(canvas, target, logo)
	return canvas, nil
}

// drawScaled рисует src в прямоугольник dst методом ближайшего соседа.
func drawScaled(canvas *image.RGBA, dst image.Rectangle, src image.Image) {
	sb := src.Bounds()
	for y := dst.Min.Y; y < dst.Max.Y; y++ {
		for x := dst.Min.X; x < dst.Max.X; x++ {
			sx := sb.Min.X + (x-dst.Min.X)*sb.Dx()/dst.Dx()
			sy := sb.Min.Y + (y-dst.Min.Y)*sb.Dy()/dst.Dy()
			canvas.Set(x, y, src.At(sx, sy))
		}
	}
}

// svgFromBitmap собирает SVG из матрицы модулей: фон одним прямоугольником
// и по прямоугольнику на каждый тёмный модуль.
func svgFromBitmap(bitmap [][]bool, opts Options) []byte {
	n := len(bitmap)
	dot := opts.DotColor
	if dot == "" {
		dot = "#000000"
	}
	bg := opts.BackgroundColor
	if bg == "" {
		bg = "#ffffff"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" shape-rendering="crispEdges">`, n, n)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="%s"/>`, n, n, bg)
	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				fmt.Fprintf(&b, `<rect x="%d" y="%d" width="1" height="1" fill="%s"/>`, x, y, dot)
			}
		}
	}
	b.WriteString(`</svg>`)
	return []byte(b.String())
}

func recoveryLevel(level string) qrcode.RecoveryLevel {
	switch level {
	case "L":
		return qrcode.Low
	case "M":
		return qrcode.Medium
	case "Q":
		return qrcode.High
	case "H":
		return qrcode.Highest
	default:
		return qrcode.Highest
	}
}

// parseHexColor разбирает цвет вида #rrggbb, возвращая fallback для
// пустых и нечитаемых значений.
func parseHexColor(s string, fallback color.Color) color.Color {
	if len(s) != 7 || s[0] != '#' {
		return fallback
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return fallback
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
