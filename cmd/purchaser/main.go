// purchaser 跨链资产管理控制面
package main

func main() {
	Execute()
}
