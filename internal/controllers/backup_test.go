package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestBackupNow_InvalidDbType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/backup/now/:db_type", BackupNow)

	req, _ := http.NewRequest("POST", "/backup/now/oracle", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望状态码 %d，实际 %d", http.StatusBadRequest, w.Code)
	}
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if APIResponseCode(response["code"].(float64)) != BadRequest {
		t.Errorf("期望代码 %d，实际 %v", BadRequest, response["code"])
	}
	if response["message"] != "不支持的数据库类型: oracle" {
		t.Errorf("响应消息错误: %v", response["message"])
	}
}

func TestSaveScheduleSettings_Validation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/schedule/settings/:db_type", SaveScheduleSettings)

	tests := []struct {
		name           string
		dbType         string
		body           map[string]interface{}
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:           "不支持的类型",
			dbType:         "oracle",
			body:           map[string]interface{}{"frequency": "daily", "time": "02:00"},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "不支持的数据库类型: oracle",
		},
		{
			name:           "缺少frequency",
			dbType:         "postgresql",
			body:           map[string]interface{}{"time": "02:00"},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "请求参数错误",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bodyBytes, _ := json.Marshal(tt.body)
			req, _ := http.NewRequest("POST", "/schedule/settings/"+tt.dbType, bytes.NewBuffer(bodyBytes))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("期望状态码 %d，实际 %d", tt.expectedStatus, w.Code)
			}
			var response map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("解析响应失败: %v", err)
			}
			if response["message"] != tt.expectedMsg {
				t.Errorf("期望消息 %q，实际 %v", tt.expectedMsg, response["message"])
			}
		})
	}
}

func TestAddConnection_MissingRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/database/connections", AddConnection)

	body := map[string]interface{}{"db_type": "postgresql", "host": "localhost"}
	bodyBytes, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", "/database/connections", bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望状态码 %d，实际 %d", http.StatusBadRequest, w.Code)
	}
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if response["message"] != "请求参数错误" {
		t.Errorf("期望消息 %q，实际 %v", "请求参数错误", response["message"])
	}
}

func TestDeleteBackup_PathTraversal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.DELETE("/backup/files/:filename", DeleteBackup)

	req, _ := http.NewRequest("DELETE", "/backup/files/..secret", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望状态码 %d，实际 %d", http.StatusBadRequest, w.Code)
	}
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if response["message"] != "非法请求" {
		t.Errorf("期望消息 %q，实际 %v", "非法请求", response["message"])
	}
}

func TestSafeBackupFileName(t *testing.T) {
	valid := []string{"pg_20260831.sql.gz", "mysql_all.tar.gz"}
	for _, name := range valid {
		if !safeBackupFileName(name) {
			t.Errorf("%q 应为合法文件名", name)
		}
	}
	invalid := []string{"", "../etc/passwd", "a/b.gz", "a\\b.gz", "..secret"}
	for _, name := range invalid {
		if safeBackupFileName(name) {
			t.Errorf("%q 应被拒绝", name)
		}
	}
}
