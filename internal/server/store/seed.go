package store

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedProductは初期カタログの1商品（YAML）
type SeedProduct struct {
	Title       string  `yaml:"title"`
	Description string  `yaml:"description"`
	Price       float64 `yaml:"price"`
	Img         string  `yaml:"img"`
	Code        string  `yaml:"code"`
	Stock       int     `yaml:"stock"`
	Category    string  `yaml:"category"`
	Status      *bool   `yaml:"status"` // 省略時は公開
}

// SeedUserは初期ユーザー（管理者の作成用）
type SeedUser struct {
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
	Age       int    `yaml:"age"`
	Password  string `yaml:"password"`
	Role      string `yaml:"role"`
}

type Seed struct {
	Users    []SeedUser    `yaml:"users"`
	Products []SeedProduct `yaml:"products"`
}

// ReadSeedはYAMLを読む。未知のキーはエラー
func ReadSeed(r io.Reader) (Seed, error) {
	var s Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if err == io.EOF {
			return Seed{}, nil
		}
		return Seed{}, fmt.Errorf("seed: %w", err)
	}
	return s, nil
}

func ReadSeedFile(path string) (Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return Seed{}, err
	}
	defer f.Close()
	return ReadSeed(f)
}

func (p SeedProduct) Active() bool {
	return p.Status == nil || *p.Status
}
