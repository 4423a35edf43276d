package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"

	"github.com/weisyn/purchaser/internal/core/manager/abi"
	"github.com/weisyn/purchaser/pkg/types"
)

// printJSON 以缩进 JSON 输出
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// renderTable 渲染带表头的表格
func renderTable(rows [][]string) error {
	return pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData(rows)).Render()
}

// catalogRows 远程函数目录表格
func catalogRows(sigs []abi.Signature) [][]string {
	rows := [][]string{{"函数", "选择器", "任务类别", "规范签名"}}
	for _, s := range sigs {
		sel := s.Selector()
		rows = append(rows, []string{s.Name, "0x" + hex.EncodeToString(sel[:]), s.Class.String(), s.Canonical()})
	}
	return rows
}

// outboxRows outbox 条目表格
func outboxRows(entries []types.OutboxEntry) [][]string {
	rows := [][]string{{"序号", "ID", "动作", "创建时间"}}
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.FormatUint(e.Seq, 10),
			e.ID,
			e.Action,
			e.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}
	return rows
}

// stateRows 所有者与重试间隔表格
func stateRows(st types.State) [][]string {
	rows := [][]string{{"字段", "值"}}
	rows = append(rows, []string{"retry_delay", strconv.FormatUint(st.RetryDelay, 10)})
	for i, o := range st.Owners {
		rows = append(rows, []string{fmt.Sprintf("owner[%d]", i), o.String()})
	}
	return rows
}

// attributeRows 命令结果属性表格
func attributeRows(resp types.Response) [][]string {
	rows := [][]string{{"属性", "值"}}
	for _, a := range resp.Attributes {
		rows = append(rows, []string{a.Key, a.Value})
	}
	return rows
}
