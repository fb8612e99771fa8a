// Package export は管理画面の商品一覧をxlsxで読み書きする
package export

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/tealeg/xlsx"
)

const SheetName = "Products"

var headers = []string{"ID", "Code", "Title", "Category", "Price", "Stock", "Status", "Description", "Image"}

var ErrEmptySheet = errors.New("xlsx file is empty or missing header row")

// 商品一覧を1シートのxlsxとしてwに書く
func WriteProducts(w io.Writer, products []model.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(SheetName)
	if err != nil {
		return err
	}

	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Code)
		row.AddCell().SetValue(p.Title)
		row.AddCell().SetValue(p.Category)
		row.AddCell().SetFloat(p.Price)
		row.AddCell().SetInt(p.Stock)
		row.AddCell().SetBool(p.Status)
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(p.Img)
	}

	return file.Write(w)
}

// ReadProductsはWriteProductsと同じ列順のシートを読む。
// 読めない行（タイトル・コードなし、数値が不正）はskippedに数える
func ReadProducts(r io.ReaderAt, size int64) (rows []repo.ProductInput, skipped int, err error) {
	xlFile, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return nil, 0, err
	}
	if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
		return nil, 0, ErrEmptySheet
	}

	sheet := xlFile.Sheets[0]
	for i := 1; i < sheet.MaxRow; i++ {
		row := sheet.Rows[i]
		get := func(index int) string {
			if index < len(row.Cells) {
				return strings.TrimSpace(row.Cells[index].String())
			}
			return ""
		}

		price, err1 := strconv.ParseFloat(get(4), 64)
		stock, err2 := strconv.Atoi(get(5))
		if get(1) == "" || get(2) == "" || err1 != nil || err2 != nil {
			skipped++
			continue
		}

		rows = append(rows, repo.ProductInput{
			Code:        get(1),
			Title:       get(2),
			Category:    get(3),
			Price:       price,
			Stock:       stock,
			Status:      parseBool(get(6)),
			Description: get(7),
			Img:         get(8),
		})
	}
	return rows, skipped, nil
}

// SetBoolは"1"/"0"で書かれる
func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes":
		return true
	}
	return false
}
