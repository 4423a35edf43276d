package dispatcher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/weisyn/purchaser/pkg/types"
)

// commandTypes 命令名到具体类型，由 AllCommands 生成
var commandTypes = func() map[string]reflect.Type {
	m := make(map[string]reflect.Type)
	for _, c := range AllCommands() {
		m[c.Action()] = reflect.TypeOf(c)
	}
	return m
}()

// Decode 解析 {"<命令名>": {...}} 形式的 JSON 信封
//
// 信封必须恰好包含一个键，未知字段视为错误；
// 未标注 omitempty 的字段必须出现。
func Decode(data []byte) (Command, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, types.WrapInvalidArgumentError("msg", err.Error())
	}
	if len(envelope) != 1 {
		return nil, types.WrapInvalidArgumentError("msg", fmt.Sprintf("expected exactly one command, got %d", len(envelope)))
	}

	for name, body := range envelope {
		typ, ok := commandTypes[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", types.ErrUnknownCommand, name)
		}
		ptr := reflect.New(typ)
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.DisallowUnknownFields()
		if err := dec.Decode(ptr.Interface()); err != nil {
			return nil, types.WrapInvalidArgumentError(name, err.Error())
		}
		if err := checkRequired(name, typ, body); err != nil {
			return nil, err
		}
		return ptr.Elem().Interface().(Command), nil
	}
	return nil, types.ErrUnknownCommand
}

// checkRequired 检查必填字段是否出现
// 值为 null 的数值字段在解码阶段已被拒绝
func checkRequired(name string, typ reflect.Type, body []byte) error {
	var present map[string]json.RawMessage
	if err := json.Unmarshal(body, &present); err != nil {
		return types.WrapInvalidArgumentError(name, err.Error())
	}
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag := field.Tag.Get("json")
		if !field.IsExported() || tag == "" || tag == "-" {
			continue
		}
		key, opts, _ := strings.Cut(tag, ",")
		if strings.Contains(opts, "omitempty") {
			continue
		}
		if _, ok := present[key]; !ok {
			return types.WrapInvalidArgumentError(name+"."+key, "missing required field")
		}
	}
	return nil
}

// Encode 把命令编码为 JSON 信封
func Encode(cmd Command) ([]byte, error) {
	return json.Marshal(map[string]Command{cmd.Action(): cmd})
}
