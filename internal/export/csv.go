// Package export 把记录序列写成 CSV（每条一行，带表头与从 1 开始的 Index 列）。
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/John-Robertt/imdbtop/internal/domain"
	"github.com/John-Robertt/imdbtop/internal/infra/fsx"
)

// DefaultDir 是导出目录的默认值（相对工作目录）。
const DefaultDir = "saved_content"

// CSVSink 把记录写到 <Dir>/<name>.csv（原子写入，同名覆盖）。
type CSVSink struct {
	Dir string
}

func (s CSVSink) dir() string {
	d := strings.TrimSpace(s.Dir)
	if d == "" {
		return DefaultDir
	}
	return d
}

// Save 写出文件并返回其路径。name 必须已经是安全文件名（调用方负责清洗）。
func (s CSVSink) Save(cat domain.Category, name string, recs []domain.Record) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\.`) {
		return "", errors.New("export: 非法文件名")
	}
	b, err := Encode(cat, recs)
	if err != nil {
		return "", err
	}
	file := name + ".csv"
	if err := fsx.WriteFileAtomic(s.dir(), file, b); err != nil {
		return "", err
	}
	return filepath.Join(s.dir(), file), nil
}

// Header 返回该类别的 CSV 表头，例如 Index,Movie,Year,Rating,Rated by,Movie Url。
func Header(cat domain.Category) []string {
	n := cat.Noun()
	return []string{"Index", n, "Year", "Rating", "Rated by", n + " Url"}
}

// Encode 把记录编码为 CSV；Rated by 列使用展示格式（千分位）。
func Encode(cat domain.Category, recs []domain.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header(cat)); err != nil {
		return nil, err
	}
	for i, r := range recs {
		row := []string{
			strconv.Itoa(i + 1),
			r.Title,
			r.Year,
			r.Rating,
			r.DisplayRatedBy(),
			r.URL,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
