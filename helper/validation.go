package helper

import (
	"fmt"
	"reflect"
	"strings"
)

// ValidateStructIsPopulated will check if any mandatory fields in cfg are missing.
// It uses struct tags to determine which fields are mandatory and the error text to fetch.
// The error text returned is just a list of the struct tags with key "errorTxt".
func ValidateStructIsPopulated(cfg interface{}) (err error) {
	errs := make([]string, 0)
	GetStructErrorTxt4UnsetFields(cfg, &errs)
	if len(errs) > 0 {
		err = fmt.Errorf("please supply values for %v", strings.Join(errs, ", "))
	}
	return
}

// GetStructErrorTxt4UnsetFields will reflect over interface i and build a slice containing error text strings for any
// struct fields that are unset i.e. are the zero value for the given field type.
// The error text strings are fetched from the errorTxt tags found on fields tagged mandatory:"yes".
// Fields without errorTxt are reported by name.
// Nested structs, non-nil struct pointers and structs held in maps or slices are descended into.
func GetStructErrorTxt4UnsetFields(i interface{}, errTags *[]string) {
	if i == nil {
		return
	}
	val := reflect.ValueOf(i)
	for val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return
	}
	typ := val.Type()
	for idx := 0; idx < val.NumField(); idx++ { // for each field in the struct...
		field := typ.Field(idx)
		if field.PkgPath != "" { // if the field is unexported...
			continue
		}
		f := val.Field(idx)
		switch f.Kind() {
		case reflect.Struct:
			GetStructErrorTxt4UnsetFields(f.Interface(), errTags)
		case reflect.Ptr:
			if !f.IsNil() && f.Elem().Kind() == reflect.Struct {
				GetStructErrorTxt4UnsetFields(f.Interface(), errTags)
			} else if f.IsNil() && field.Tag.Get("mandatory") == "yes" {
				*errTags = append(*errTags, errorTxt(field))
			}
		case reflect.Map:
			keys := f.MapKeys()
			for _, k := range keys {
				GetStructErrorTxt4UnsetFields(f.MapIndex(k).Interface(), errTags)
			}
			if len(keys) == 0 && field.Tag.Get("mandatory") == "yes" {
				*errTags = append(*errTags, errorTxt(field))
			}
		case reflect.Slice:
			for j := 0; j < f.Len(); j++ {
				GetStructErrorTxt4UnsetFields(f.Index(j).Interface(), errTags)
			}
			if f.Len() == 0 && field.Tag.Get("mandatory") == "yes" {
				*errTags = append(*errTags, errorTxt(field))
			}
		default:
			if f.IsZero() && field.Tag.Get("mandatory") == "yes" {
				*errTags = append(*errTags, errorTxt(field))
			}
		}
	}
}

func errorTxt(f reflect.StructField) string {
	if t := f.Tag.Get("errorTxt"); t != "" {
		return t
	}
	return f.Name
}
