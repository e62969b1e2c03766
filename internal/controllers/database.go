package controllers

import (
	"DB-Backup-Web/internal/helpers"
	"DB-Backup-Web/internal/models"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ConnectionListResponse 按类型分组的连接列表
type ConnectionListResponse struct {
	Postgresql []*models.DatabaseConnection `json:"postgresql"`
	Mysql      []*models.DatabaseConnection `json:"mysql"`
}

// ListConnections 获取所有数据库连接配置
// @Summary 获取数据库连接列表
// @Description 按类型分组返回所有备份目标数据库的连接配置
// @Tags 数据库管理
// @Accept json
// @Produce json
// @Success 200 {object} object
// @Failure 200 {object} object
// @Router /database/connections [get]
// @Security JwtAuth
func ListConnections(c *gin.Context) {
	pgConns, err := models.GetDatabaseConnections(string(helpers.BackupDbTypePostgres))
	if err != nil {
		c.JSON(http.StatusOK, APIResponse[any]{Code: BadRequest, Message: "查询连接列表失败: " + err.Error(), Data: nil})
		return
	}
	mysqlConns, err := models.GetDatabaseConnections(string(helpers.BackupDbTypeMysql))
	if err != nil {
		c.JSON(http.StatusOK, APIResponse[any]{Code: BadRequest, Message: "查询连接列表失败: " + err.Error(), Data: nil})
		return
	}
	c.JSON(http.StatusOK, APIResponse[any]{Code: Success, Message: "查询连接列表成功", Data: ConnectionListResponse{
		Postgresql: pgConns,
		Mysql:      mysqlConns,
	}})
}

// AddConnection 添加数据库连接
// @Summary 添加数据库连接
// @Description 添加一个备份目标数据库的连接配置
// @Tags 数据库管理
// @Accept json
// @Produce json
// @Success 200 {object} object
// @Failure 200 {object} object
// @Router /database/connections [post]
// @Security JwtAuth
func AddConnection(c *gin.Context) {
	var req struct {
		DbType   string `json:"db_type" form:"db_type" binding:"required"`
		Host     string `json:"host" form:"host" binding:"required"`
		Port     string `json:"port" form:"port" binding:"required"`
		User     string `json:"user" form:"user" binding:"required"`
		Password string `json:"password" form:"password" binding:"required"`
		DbName   string `json:"db_name" form:"db_name"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse[any]{Code: BadRequest, Message: "请求参数错误", Data: nil})
		return
	}
	if !helpers.IsValidBackupDbType(req.DbType) {
		c.JSON(http.StatusBadRequest, APIResponse[any]{Code: BadRequest, Message: fmt.Sprintf("不支持的数据库类型: %s", req.DbType), Data: nil})
		return
	}

	id, err := models.AddDatabaseConnection(req.DbType, req.Host, req.Port, req.User, req.Password, req.DbName)
	if err != nil {
		c.JSON(http.StatusOK, APIResponse[any]{Code: BadRequest, Message: "添加连接失败: " + err.Error(), Data: nil})
		return
	}
	c.JSON(http.StatusOK, APIResponse[any]{Code: Success, Message: "添加连接成功", Data: map[string]string{"id": id}})
}

// UpdateConnection 更新数据库连接
// @Summary 更新数据库连接
// @Description 更新指定ID的连接配置
// @Tags 数据库管理
// @Accept json
// @Produce json
// @Success 200 {object} object
// @Failure 200 {object} object
// @Router /database/connections/:id [put]
// @Security JwtAuth
func UpdateConnection(c *gin.Context) {
	id := c.Param("id")
	var req struct {
		DbType   string `json:"db_type" form:"db_type" binding:"required"`
		Host     string `json:"host" form:"host" binding:"required"`
		Port     string `json:"port" form:"port" binding:"required"`
		User     string `json:"user" form:"user" binding:"required"`
		Password string `json:"password" form:"password" binding:"required"`
		DbName   string `json:"db_name" form:"db_name"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse[any]{Code: BadRequest, Message: "请求参数错误", Data: nil})
		return
	}
	if !helpers.IsValidBackupDbType(req.DbType) {
		c.JSON(http.StatusBadRequest, APIResponse[any]{Code: BadRequest, Message: fmt.Sprintf("不支持的数据库类型: %s", req.DbType), Data: nil})
		return
	}
	if err := models.UpdateDatabaseConnection(id, req.DbType, req.Host, req.Port, req.User, req.Password, req.DbName); err != nil {
		c.JSON(http.StatusOK, APIResponse[any]{Code: BadRequest, Message: "更新连接失败: " + err.Error(), Data: nil})
		return
	}
	c.JSON(http.StatusOK, APIResponse[any]{Code: Success, Message: "更新连接成功", Data: nil})
}

// DeleteConnection 删除数据库连接
// @Summary 删除数据库连接
// @Description 删除指定ID的连接配置
// @Tags 数据库管理
// @Accept json
// @Produce json
// @Success 200 {object} object
// @Failure 200 {object} object
// @Router /database/connections/:id [delete]
// @Security JwtAuth
func DeleteConnection(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, APIResponse[any]{Code: BadRequest, Message: "缺少连接ID", Data: nil})
		return
	}
	if err := models.DeleteDatabaseConnection(id); err != nil {
		c.JSON(http.StatusOK, APIResponse[any]{Code: BadRequest, Message: "删除连接失败: " + err.Error(), Data: nil})
		return
	}
	c.JSON(http.StatusOK, APIResponse[any]{Code: Success, Message: "删除连接成功", Data: nil})
}
