package random

import (
	"crypto/rand"
	"math/big"
)

// hidCharset 短 ID 字符集（小写字母，便于用户手动输入）
const hidCharset = "abcdefghijklmnopqrstuvwxyz"

// HidLength 系统/成员短 ID 长度
const HidLength = 5

// GetRandomString 生成指定长度的安全随机字符串
func GetRandomString(length int, charset string) string {
	result := make([]byte, length)
	charsetLen := big.NewInt(int64(len(charset)))
	for i := range result {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			result[i] = charset[0]
			continue
		}
		result[i] = charset[n.Int64()]
	}
	return string(result)
}

// GenerateHid 生成 5 位小写字母短 ID
// 示例: exmpl
func GenerateHid() string {
	return GetRandomString(HidLength, hidCharset)
}
