package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/CaiJingLong/Tally/internal/metrics"
	"github.com/CaiJingLong/Tally/internal/resource"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

var apiNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func sampleSummaries() []resource.Summary {
	list := []resource.Resource{
		{ID: 1, Name: "云服务器", Group: "阿里云", ExpireAt: apiNow.AddDate(0, 0, 3)},
		{ID: 2, Name: "cdn", Group: "AWS", ExpireAt: apiNow.AddDate(0, 2, 0)},
		{ID: 3, Name: "db.example.com", Group: "", ExpireAt: apiNow.AddDate(0, 0, -1)},
	}
	out := make([]resource.Summary, 0, len(list))
	for _, r := range list {
		out = append(out, r.View(apiNow))
	}
	return out
}

type APISuite struct {
	suite.Suite
	srv     *CalendarServer
	router  http.Handler
	metrics *metrics.Metrics
}

func (s *APISuite) SetupTest() {
	reg := prometheus.NewRegistry()
	s.metrics = metrics.New(reg)
	s.srv = NewCalendarServer("0")
	s.srv.Metrics = s.metrics
	s.srv.Gatherer = reg
	s.srv.SetResources(sampleSummaries())
	s.router = s.srv.Router()
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) get(target string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *APISuite) decodeResources(rec *httptest.ResponseRecorder) resourcesResponse {
	var body resourcesResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (s *APISuite) names(body resourcesResponse) []string {
	out := make([]string, len(body.Resources))
	for i, r := range body.Resources {
		out[i] = r.Name
	}
	return out
}

func (s *APISuite) TestResources_All() {
	rec := s.get("/api/resources")
	s.Equal(http.StatusOK, rec.Code)

	body := s.decodeResources(rec)
	s.Equal(3, body.Total)
	s.Equal([]string{"云服务器", "cdn", "db.example.com"}, s.names(body))
	s.Equal("3 days left", body.Resources[0].RemainingLabel)
	s.Equal("June 4, 2025", body.Resources[0].ExpiryDisplay)
	s.Equal("Expired", body.Resources[2].RemainingLabel)
	s.Equal(resource.UrgencyCritical, body.Resources[0].Urgency)
}

func (s *APISuite) TestResources_Queries() {
	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{"Initials", "/api/resources?q=yfw", []string{"云服务器"}},
		{"Group pinyin", "/api/resources?q=aliyun", []string{"云服务器"}},
		{"Glob", "/api/resources?q=*.example.com&mode=glob", []string{"db.example.com"}},
		{"Regex", "/api/resources?q=%5Ec.n%24&mode=regex", []string{"cdn"}},
		{"Invalid regex is empty", "/api/resources?q=%5B&mode=regex", []string{}},
		{"Group filter", "/api/resources?group=AWS", []string{"cdn"}},
		{"Group and query", "/api/resources?group=AWS&q=yun", []string{}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			rec := s.get(tt.target)
			s.Equal(http.StatusOK, rec.Code)
			s.Equal(tt.want, s.names(s.decodeResources(rec)))
		})
	}
	s.Equal(1.0, testutil.ToFloat64(s.metrics.SearchQueries.WithLabelValues("glob")))
}

func (s *APISuite) TestResources_Localized() {
	rec := s.get("/api/resources?q=cdn", "Accept-Language", "zh-CN,zh;q=0.9")
	body := s.decodeResources(rec)
	s.Require().Len(body.Resources, 1)
	s.Equal("剩余 61 天", body.Resources[0].RemainingLabel)
	s.Equal("2025年8月1日", body.Resources[0].ExpiryDisplay)

	rec = s.get("/api/resources?q=cdn&lang=ja")
	body = s.decodeResources(rec)
	s.Equal("残り 61 日", body.Resources[0].RemainingLabel)
}

func (s *APISuite) TestResources_BadMode() {
	rec := s.get("/api/resources?mode=fuzzy")
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *APISuite) TestGroups() {
	rec := s.get("/api/groups")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"groups":["AWS","阿里云"]}`, rec.Body.String())
}

func (s *APISuite) TestParseDate() {
	tests := []struct {
		name     string
		target   string
		headers  []string
		wantCode int
		wantJSON string
	}{
		{
			name:     "US format",
			target:   "/api/dates/parse?text=01/31/2025",
			wantCode: http.StatusOK,
			wantJSON: `{"input":"01/31/2025","date":"2025-01-31","display":"January 31, 2025","unix":1738281600}`,
		},
		{
			name:     "CJK format displayed in Chinese",
			target:   "/api/dates/parse?text=2025%E5%B9%B41%E6%9C%8831%E6%97%A5&lang=zh",
			wantCode: http.StatusOK,
			wantJSON: `{"input":"2025年1月31日","date":"2025-01-31","display":"2025年1月31日","unix":1738281600}`,
		},
		{
			name:     "Unrecognized",
			target:   "/api/dates/parse?text=2025-02-30",
			wantCode: http.StatusUnprocessableEntity,
			wantJSON: `{"error":"Unrecognized date. Try a format like 2025-12-31, 12/31/2025 or 2025年12月31日.","input":"2025-02-30"}`,
		},
		{
			name:     "Empty in Chinese",
			target:   "/api/dates/parse?text=",
			headers:  []string{"Accept-Language", "zh"},
			wantCode: http.StatusUnprocessableEntity,
			wantJSON: `{"error":"请输入日期。"}`,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			rec := s.get(tt.target, tt.headers...)
			s.Equal(tt.wantCode, rec.Code)
			s.JSONEq(tt.wantJSON, rec.Body.String())
		})
	}
	s.Equal(2.0, testutil.ToFloat64(s.metrics.DateParses.WithLabelValues(metrics.ResultFailure)))
}

func (s *APISuite) TestMetricsEndpoint() {
	s.metrics.IncSearch("normal")

	rec := s.get("/metrics")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "tally_search_queries_total")
}
