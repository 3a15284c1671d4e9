package service

import (
	"context"
	"encoding/json"
	"errors"
	"fordrax_backend/internal/model"
	"fordrax_backend/internal/repository"
	"fordrax_backend/internal/util"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fordrax_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const publishedLibraryCacheKey = "fordrax:modules:published"

// ModuleService 模块库的管理端与学生端操作。
// 已发布列表带 Redis 缓存，写操作使缓存失效
type ModuleService struct {
	ModuleRepo   *repository.ModuleRepository
	QuestionRepo *repository.QuestionRepository
	Storage      *StorageService
	Redis        *redis.Client
}

func NewModuleService(moduleRepo *repository.ModuleRepository, questionRepo *repository.QuestionRepository, storage *StorageService, rdb *redis.Client) *ModuleService {
	return &ModuleService{
		ModuleRepo:   moduleRepo,
		QuestionRepo: questionRepo,
		Storage:      storage,
		Redis:        rdb,
	}
}

type CreateModuleRequest struct {
	Slug       string `json:"slug" binding:"required"`
	Title      string `json:"title" binding:"required"`
	Summary    string `json:"summary"`
	Body       string `json:"body"`
	Difficulty string `json:"difficulty"`
}

func (s *ModuleService) Create(req *CreateModuleRequest) (*model.TrainingModule, error) {
	if _, err := s.ModuleRepo.FindBySlug(req.Slug); err == nil {
		return nil, fmt.Errorf("module slug %q already exists", req.Slug)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = "basic"
	}
	m := &model.TrainingModule{
		Slug:       req.Slug,
		Title:      req.Title,
		Summary:    req.Summary,
		Body:       req.Body,
		Difficulty: difficulty,
	}
	if err := s.ModuleRepo.Create(m); err != nil {
		return nil, err
	}
	return m, nil
}

type UpdateModuleRequest struct {
	Title      string `json:"title"`
	Summary    string `json:"summary"`
	Body       string `json:"body"`
	Difficulty string `json:"difficulty"`
}

func (s *ModuleService) Update(id string, req *UpdateModuleRequest) (*model.TrainingModule, error) {
	m, err := s.ModuleRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}

	if req.Title != "" {
		m.Title = req.Title
	}
	if req.Summary != "" {
		m.Summary = req.Summary
	}
	if req.Body != "" {
		m.Body = req.Body
	}
	if req.Difficulty != "" {
		m.Difficulty = req.Difficulty
	}

	if err := s.ModuleRepo.Update(m); err != nil {
		return nil, err
	}
	s.invalidateLibraryCache()
	return m, nil
}

func (s *ModuleService) Get(id string) (*model.TrainingModule, error) {
	m, err := s.ModuleRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrModuleNotFound
	}
	return m, err
}

func (s *ModuleService) GetBySlug(slug string) (*model.TrainingModule, error) {
	m, err := s.ModuleRepo.FindBySlug(slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrModuleNotFound
	}
	return m, err
}

func (s *ModuleService) List(page, limit int) ([]model.TrainingModule, int64, error) {
	return s.ModuleRepo.List(page, limit)
}

func (s *ModuleService) Delete(id string) error {
	if err := s.ModuleRepo.Delete(id); err != nil {
		return err
	}
	s.invalidateLibraryCache()
	return nil
}

func (s *ModuleService) SetPublished(id string, published bool) error {
	if _, err := s.ModuleRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrModuleNotFound
		}
		return err
	}
	if err := s.ModuleRepo.SetPublished(id, published); err != nil {
		return err
	}
	s.invalidateLibraryCache()
	return nil
}

// ModuleSummary 学生端目录条目，不含正文
type ModuleSummary struct {
	ID            string  `json:"id"`
	Slug          string  `json:"slug"`
	Title         string  `json:"title"`
	Summary       string  `json:"summary"`
	Difficulty    string  `json:"difficulty"`
	PosterURL     string  `json:"posterUrl"`
	VideoDuration float64 `json:"videoDuration"`
}

// ListPublished 学生端模块目录，只含已发布模块。缓存 5 分钟
func (s *ModuleService) ListPublished(ctx context.Context) ([]ModuleSummary, error) {
	if s.Redis != nil {
		cached, err := s.Redis.Get(ctx, publishedLibraryCacheKey).Result()
		if err == nil {
			var summaries []ModuleSummary
			if err := json.Unmarshal([]byte(cached), &summaries); err == nil {
				return summaries, nil
			}
		}
	}

	modules, err := s.ModuleRepo.ListPublished()
	if err != nil {
		return nil, err
	}

	summaries := make([]ModuleSummary, 0, len(modules))
	for _, m := range modules {
		summaries = append(summaries, ModuleSummary{
			ID:            m.ID,
			Slug:          m.Slug,
			Title:         m.Title,
			Summary:       m.Summary,
			Difficulty:    m.Difficulty,
			PosterURL:     m.PosterURL,
			VideoDuration: m.VideoDuration,
		})
	}

	if s.Redis != nil {
		if raw, err := json.Marshal(summaries); err == nil {
			if err := s.Redis.Set(ctx, publishedLibraryCacheKey, raw, 5*time.Minute).Err(); err != nil {
				logger.Log.Warn("module library cache write failed", zap.Error(err))
			}
		}
	}
	return summaries, nil
}

func (s *ModuleService) invalidateLibraryCache() {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(context.Background(), publishedLibraryCacheKey).Err(); err != nil {
		logger.Log.Warn("module library cache invalidation failed", zap.Error(err))
	}
}

// UploadPoster 上传模块封面图
func (s *ModuleService) UploadPoster(ctx context.Context, moduleID string, file *multipart.FileHeader) (string, error) {
	m, err := s.ModuleRepo.FindByID(moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", util.ErrModuleNotFound
		}
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !extensionAllowed(ext, util.AllowedImageExtensions) {
		return "", fmt.Errorf("unsupported image type: %s", ext)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	filename := fmt.Sprintf("posters/%s%s", moduleID, ext)
	url, err := s.Storage.Upload(ctx, filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}

	m.PosterURL = url
	if err := s.ModuleRepo.Update(m); err != nil {
		return "", err
	}
	s.invalidateLibraryCache()
	return url, nil
}

// UploadVideo 上传模块讲解视频，用 ffmpeg 探测时长后写回模块
func (s *ModuleService) UploadVideo(ctx context.Context, moduleID string, file *multipart.FileHeader) (string, error) {
	m, err := s.ModuleRepo.FindByID(moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", util.ErrModuleNotFound
		}
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !extensionAllowed(ext, util.AllowedVideoExtensions) {
		return "", fmt.Errorf("unsupported video type: %s", ext)
	}

	// 先落临时文件，探测元数据后再入对象存储
	tmp, err := os.CreateTemp("", "module-video-*"+ext)
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	src, err := file.Open()
	if err != nil {
		tmp.Close()
		return "", err
	}
	if _, err := io.Copy(tmp, src); err != nil {
		src.Close()
		tmp.Close()
		return "", err
	}
	src.Close()
	tmp.Close()

	info, err := util.GetVideoInfo(tmp.Name())
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("videos/%s%s", moduleID, ext)
	url, err := s.Storage.UploadFile(ctx, filename, tmp.Name(), file.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}

	m.VideoURL = url
	m.VideoDuration = info.Duration
	if err := s.ModuleRepo.Update(m); err != nil {
		return "", err
	}
	s.invalidateLibraryCache()
	return url, nil
}

func extensionAllowed(ext string, allowed []string) bool {
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}

// --- 题目管理 ---

type ChoiceInput struct {
	Label     string `json:"label" binding:"required"`
	IsCorrect bool   `json:"isCorrect"`
	Order     int    `json:"order"`
}

type CreateQuestionRequest struct {
	Prompt  string        `json:"prompt" binding:"required"`
	Order   int           `json:"order"`
	Choices []ChoiceInput `json:"choices" binding:"required"`
}

func validateChoices(choices []ChoiceInput) error {
	if len(choices) < 2 {
		return errors.New("a question needs at least two choices")
	}
	correct := 0
	for _, c := range choices {
		if c.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return errors.New("a question needs exactly one correct choice")
	}
	return nil
}

func (s *ModuleService) CreateQuestion(moduleID string, req *CreateQuestionRequest) (*model.Question, error) {
	if _, err := s.ModuleRepo.FindByID(moduleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}
	if err := validateChoices(req.Choices); err != nil {
		return nil, err
	}

	q := &model.Question{
		ModuleID: moduleID,
		Prompt:   req.Prompt,
		Order:    req.Order,
	}
	for _, c := range req.Choices {
		q.Choices = append(q.Choices, model.QuestionChoice{
			Label:     c.Label,
			IsCorrect: c.IsCorrect,
			Order:     c.Order,
		})
	}
	if err := s.QuestionRepo.Create(q); err != nil {
		return nil, err
	}
	return q, nil
}

type UpdateQuestionRequest struct {
	Prompt  string        `json:"prompt"`
	Order   *int          `json:"order"`
	Choices []ChoiceInput `json:"choices"`
}

// applyQuestionUpdate 校验并应用修改。校验先于任何字段修改，
// 非法的选项集不会留下半更新的题目
func applyQuestionUpdate(q *model.Question, req *UpdateQuestionRequest) ([]model.QuestionChoice, error) {
	var choices []model.QuestionChoice
	if req.Choices != nil {
		if err := validateChoices(req.Choices); err != nil {
			return nil, err
		}
		choices = make([]model.QuestionChoice, 0, len(req.Choices))
		for _, c := range req.Choices {
			choices = append(choices, model.QuestionChoice{
				Label:     c.Label,
				IsCorrect: c.IsCorrect,
				Order:     c.Order,
			})
		}
	}

	if req.Prompt != "" {
		q.Prompt = req.Prompt
	}
	if req.Order != nil {
		q.Order = *req.Order
	}
	return choices, nil
}

func (s *ModuleService) UpdateQuestion(questionID string, req *UpdateQuestionRequest) (*model.Question, error) {
	q, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		return nil, err
	}

	choices, err := applyQuestionUpdate(q, req)
	if err != nil {
		return nil, err
	}

	if err := s.QuestionRepo.Update(q); err != nil {
		return nil, err
	}
	if choices != nil {
		if err := s.QuestionRepo.ReplaceChoices(questionID, choices); err != nil {
			return nil, err
		}
	}
	return s.QuestionRepo.FindByID(questionID)
}

func (s *ModuleService) DeleteQuestion(questionID string) error {
	return s.QuestionRepo.Delete(questionID)
}

// ListQuestions 管理端视图，含答案键
func (s *ModuleService) ListQuestions(moduleID string) ([]model.Question, error) {
	return s.QuestionRepo.ListByModule(moduleID)
}
