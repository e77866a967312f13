package handler

import (
	"BrainScript/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

// uintParam 解析路径上的数字 ID，0 视为非法
func uintParam(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, service.ErrParamInvalid
	}
	return id, nil
}
