package handlers

import "github.com/go-playground/validator/v10"

// validate, tüm handler'ların paylaştığı validator instance'ı.
// validator.New pahalıdır (struct cache kurar) — bir kez oluşturulur.
var validate = validator.New()
