package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"careerhub/internal/domain/resume"
	"careerhub/internal/domain/user"
	"careerhub/internal/infrastructure/docparse"
	"careerhub/internal/infrastructure/llm"
	"careerhub/internal/infrastructure/storage"
	"careerhub/internal/pipeline"
	"careerhub/internal/repository"
	"careerhub/internal/worker"
	"careerhub/internal/ws"
)

// FileStore keeps uploaded files.
type FileStore interface {
	Save(rel string, r io.Reader, maxBytes int64) (storage.Saved, error)
	Read(rel string) ([]byte, error)
	Delete(rel string) error
}

type UploadInput struct {
	FileName     string
	DeclaredType string
	Size         int64
	Body         io.Reader
}

type ResumeUsecase interface {
	Upload(ctx context.Context, actor Actor, in UploadInput) (resume.Resume, error)
	List(ctx context.Context, actor Actor) ([]resume.Resume, error)
	Primary(ctx context.Context, actor Actor) (resume.Resume, error)
	SetPrimary(ctx context.Context, actor Actor, id uuid.UUID) (resume.Resume, error)
	Download(ctx context.Context, actor Actor, id uuid.UUID) (resume.Resume, []byte, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	Analyze(ctx context.Context, actor Actor, id uuid.UUID) (resume.Resume, error)
	Analysis(ctx context.Context, actor Actor, id uuid.UUID) (resume.Analysis, error)
}

type ResumeDeps struct {
	Resumes  repository.ResumeRepository
	Analyses repository.AnalysisRepository
	Apps     repository.ApplicationRepository
	Users    repository.UserRepository
	Skills   repository.SkillRepository
	Files    FileStore
	Tasks    Tasks
	Notify   Notifier
	LLM      llm.Client
	MaxBytes int64
	Logger   *logrus.Logger
}

type Resumes struct {
	resumes  repository.ResumeRepository
	analyses repository.AnalysisRepository
	apps     repository.ApplicationRepository
	users    repository.UserRepository
	skills   repository.SkillRepository
	files    FileStore
	tasks    Tasks
	notify   Notifier
	llm      llm.Client
	maxBytes int64
	logger   *logrus.Logger
}

func NewResumeUsecase(d ResumeDeps) *Resumes {
	return &Resumes{
		resumes:  d.Resumes,
		analyses: d.Analyses,
		apps:     d.Apps,
		users:    d.Users,
		skills:   d.Skills,
		files:    d.Files,
		tasks:    d.Tasks,
		notify:   d.Notify,
		llm:      d.LLM,
		maxBytes: d.MaxBytes,
		logger:   orLogger(d.Logger),
	}
}

func (u *Resumes) Upload(ctx context.Context, actor Actor, in UploadInput) (resume.Resume, error) {
	if err := requireStudent(actor); err != nil {
		return resume.Resume{}, err
	}
	ct, err := resume.DetectType(in.DeclaredType, in.FileName)
	if err != nil {
		return resume.Resume{}, fmt.Errorf("%w: accepted types are pdf, doc, docx and txt", ErrUnsupportedMedia)
	}
	if in.Size == 0 || in.Body == nil {
		return resume.Resume{}, invalid("file", "file is empty")
	}
	if u.maxBytes > 0 && in.Size > u.maxBytes {
		return resume.Resume{}, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, u.maxBytes)
	}

	id := uuid.New()
	rel := fmt.Sprintf("resumes/%s/%s%s", actor.UserID, id, resume.Extension(ct))
	saved, err := u.files.Save(rel, in.Body, u.maxBytes)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return resume.Resume{}, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, u.maxBytes)
		}
		return resume.Resume{}, internal(err)
	}
	if saved.Size == 0 {
		_ = u.files.Delete(rel)
		return resume.Resume{}, invalid("file", "file is empty")
	}

	created, err := u.resumes.Create(ctx, resume.Resume{
		ID:          id,
		StudentID:   actor.UserID,
		FileName:    strings.TrimSpace(in.FileName),
		FilePath:    saved.Path,
		ContentType: ct,
		SizeBytes:   saved.Size,
		SHA256:      saved.SHA256,
		Status:      resume.StatusPending,
	})
	if err != nil {
		_ = u.files.Delete(rel)
		return resume.Resume{}, internal(err)
	}
	u.enqueueParse(ctx, created.ID)
	return created, nil
}

func (u *Resumes) enqueueParse(ctx context.Context, id uuid.UUID) {
	queued := submit(ctx, u.tasks, u.logger, worker.Task{
		Name: "resume-parse:" + id.String(),
		Run:  func(ctx context.Context) error { return u.Parse(ctx, id) },
	})
	if !queued {
		if err := u.resumes.SetStatus(context.WithoutCancel(ctx), id, resume.StatusFailed, "parse queue unavailable"); err != nil {
			u.logger.WithError(err).WithField("resume_id", id).Error("resume failure status not stored")
		}
	}
}

// own loads a resume owned by the student. Other students' resumes are
// reported as missing.
func (u *Resumes) own(ctx context.Context, actor Actor, id uuid.UUID) (resume.Resume, error) {
	if err := requireStudent(actor); err != nil {
		return resume.Resume{}, err
	}
	rs, err := u.resumes.GetByID(ctx, id)
	if err != nil {
		return resume.Resume{}, notFound(err, "resume", resume.ErrNotFound)
	}
	if rs.StudentID != actor.UserID {
		return resume.Resume{}, fmt.Errorf("%w: resume", ErrNotFound)
	}
	return rs, nil
}

func (u *Resumes) List(ctx context.Context, actor Actor) ([]resume.Resume, error) {
	if err := requireStudent(actor); err != nil {
		return nil, err
	}
	out, err := u.resumes.ListByStudent(ctx, actor.UserID)
	if err != nil {
		return nil, internal(err)
	}
	return out, nil
}

func (u *Resumes) Primary(ctx context.Context, actor Actor) (resume.Resume, error) {
	if err := requireStudent(actor); err != nil {
		return resume.Resume{}, err
	}
	rs, err := u.resumes.GetPrimary(ctx, actor.UserID)
	if err != nil {
		return resume.Resume{}, notFound(err, "primary resume", resume.ErrNotFound)
	}
	return rs, nil
}

func (u *Resumes) SetPrimary(ctx context.Context, actor Actor, id uuid.UUID) (resume.Resume, error) {
	if err := requireStudent(actor); err != nil {
		return resume.Resume{}, err
	}
	rs, err := u.resumes.SetPrimary(ctx, actor.UserID, id)
	if err != nil {
		return resume.Resume{}, notFound(err, "resume", resume.ErrNotFound)
	}
	return rs, nil
}

func (u *Resumes) Download(ctx context.Context, actor Actor, id uuid.UUID) (resume.Resume, []byte, error) {
	rs, err := u.resumes.GetByID(ctx, id)
	if err != nil {
		return resume.Resume{}, nil, notFound(err, "resume", resume.ErrNotFound)
	}
	if err := u.canDownload(ctx, actor, rs); err != nil {
		return resume.Resume{}, nil, err
	}
	data, err := u.files.Read(rs.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return resume.Resume{}, nil, fmt.Errorf("%w: resume file", ErrNotFound)
		}
		return resume.Resume{}, nil, internal(err)
	}
	return rs, data, nil
}

func (u *Resumes) canDownload(ctx context.Context, actor Actor, rs resume.Resume) error {
	switch actor.Role {
	case user.RoleStudent:
		if rs.StudentID == actor.UserID {
			return nil
		}
		return fmt.Errorf("%w: resume", ErrNotFound)
	case user.RoleEmployer:
		_, companyID, err := employerCompany(ctx, u.users, actor)
		if err != nil {
			return err
		}
		ok, err := u.apps.ResumeAttachedToCompany(ctx, rs.ID, companyID)
		if err != nil {
			return internal(err)
		}
		if ok {
			return nil
		}
	}
	return ErrForbidden
}

func (u *Resumes) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := requireStudent(actor); err != nil {
		return err
	}
	deleted, err := u.resumes.Delete(ctx, actor.UserID, id)
	if err != nil {
		return notFound(err, "resume", resume.ErrNotFound)
	}
	if err := u.files.Delete(deleted.FilePath); err != nil {
		u.logger.WithError(err).WithField("resume_id", id).Warn("resume file not removed")
	}
	return nil
}

func (u *Resumes) Analyze(ctx context.Context, actor Actor, id uuid.UUID) (resume.Resume, error) {
	rs, err := u.own(ctx, actor, id)
	if err != nil {
		return resume.Resume{}, err
	}
	if err := u.resumes.SetStatus(ctx, rs.ID, resume.StatusPending, ""); err != nil {
		return resume.Resume{}, internal(err)
	}
	rs.Status = resume.StatusPending
	rs.ParseError = ""
	u.enqueueParse(ctx, rs.ID)
	return rs, nil
}

func (u *Resumes) Analysis(ctx context.Context, actor Actor, id uuid.UUID) (resume.Analysis, error) {
	rs, err := u.own(ctx, actor, id)
	if err != nil {
		return resume.Analysis{}, err
	}
	if rs.Status.InFlight() {
		return resume.Analysis{}, ErrProcessing
	}
	a, err := u.analyses.GetCV(ctx, rs.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return resume.Placeholder(), nil
	}
	if err != nil {
		return resume.Analysis{}, internal(err)
	}
	return a, nil
}

// Reparse queues every resume in the given state, up to limit.
func (u *Resumes) Reparse(ctx context.Context, status resume.ParseStatus, limit int) (int, error) {
	rows, err := u.resumes.ListByStatus(ctx, status, limit)
	if err != nil {
		return 0, internal(err)
	}
	for _, rs := range rows {
		u.enqueueParse(ctx, rs.ID)
	}
	return len(rows), nil
}

// Parse extracts, embeds and reviews one resume. Extraction failures are
// recorded on the resume rather than returned.
func (u *Resumes) Parse(ctx context.Context, id uuid.UUID) (err error) {
	log := u.logger.WithFields(logrus.Fields{"component": "resume_parse", "resume_id": id})
	started := time.Now()

	rs, err := u.resumes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := u.resumes.SetStatus(ctx, id, resume.StatusProcessing, ""); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			u.parseFailed(context.WithoutCancel(ctx), rs.StudentID, id, err, log)
		}
	}()

	text, xerr := u.extract(ctx, rs)
	if xerr != nil {
		log.WithError(xerr).Warn("resume text extraction failed")
		u.parseFailed(ctx, rs.StudentID, id, xerr, log)
		return nil
	}
	if err := u.resumes.SaveParsed(ctx, id, text); err != nil {
		return err
	}

	if u.llm != nil {
		if vec, err := u.llm.Embed(ctx, text); err != nil {
			log.WithError(err).Warn("resume embedding failed")
		} else if err := u.resumes.SetEmbedding(ctx, id, vec); err != nil {
			log.WithError(err).Warn("resume embedding not stored")
		}
	}

	dict, err := u.skills.All(ctx)
	if err != nil {
		return err
	}
	found := pipeline.Names(pipeline.ExtractSkills(text, dict))
	analysis := u.review(ctx, rs.StudentID, text, found, log)
	if err := u.analyses.UpsertCV(ctx, id, analysis); err != nil {
		return err
	}
	if err := u.analyses.MarkStaleByResume(ctx, id); err != nil {
		log.WithError(err).Warn("job reports not marked stale")
	}

	u.notify.send([]uuid.UUID{rs.StudentID}, ws.EventResumeAnalyzed, map[string]any{
		"resume_id":     id,
		"status":        resume.StatusParsed,
		"overall_score": analysis.OverallScore,
	})
	log.WithFields(logrus.Fields{"skills": len(found), "latency": time.Since(started).String()}).Info("resume parsed")
	return nil
}

// parseFailed moves a resume out of processing so readers stop waiting on it.
func (u *Resumes) parseFailed(ctx context.Context, studentID, id uuid.UUID, cause error, log *logrus.Entry) {
	if err := u.resumes.SetStatus(ctx, id, resume.StatusFailed, cause.Error()); err != nil {
		log.WithError(err).Error("resume failure status not stored")
	}
	u.notify.send([]uuid.UUID{studentID}, ws.EventResumeAnalyzed, map[string]any{
		"resume_id": id,
		"status":    resume.StatusFailed,
		"error":     cause.Error(),
	})
}

func (u *Resumes) extract(ctx context.Context, rs resume.Resume) (string, error) {
	data, err := u.files.Read(rs.FilePath)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	text, err := docparse.Extract(rs.ContentType, data)
	if errors.Is(err, docparse.ErrUnsupported) {
		if u.llm == nil {
			return "", fmt.Errorf("%s files need the language model to be read", resume.Extension(rs.ContentType))
		}
		text, err = u.llm.ExtractText(ctx, llm.Attachment{MIMEType: rs.ContentType, Data: data})
		text = docparse.Normalize(text)
	}
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("no text found in document")
	}
	return text, nil
}

// review runs the model CV analysis and falls back to the heuristic one.
func (u *Resumes) review(ctx context.Context, studentID uuid.UUID, text string, found []string, log *logrus.Entry) resume.Analysis {
	wanted := u.profileSkillsMissing(ctx, studentID, found)
	if u.llm == nil {
		return resume.Heuristic(text, found, wanted)
	}
	raw, err := u.llm.GenerateJSON(ctx, llm.SchemaCVAnalysis, cvPrompt(text, found))
	if err != nil {
		log.WithError(err).Warn("cv analysis failed, using heuristic review")
		return resume.Heuristic(text, found, wanted)
	}
	a := resume.Placeholder()
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		log.WithError(err).Warn("cv analysis unreadable, using heuristic review")
		return resume.Heuristic(text, found, wanted)
	}
	a.ModelName = u.llm.Model()
	return a
}

// profileSkillsMissing lists skills on the student's profile that the CV
// never mentions.
func (u *Resumes) profileSkillsMissing(ctx context.Context, studentID uuid.UUID, found []string) []string {
	declared, err := u.users.ListStudentSkills(ctx, studentID)
	if err != nil {
		return nil
	}
	have := make(map[string]bool, len(found))
	for _, f := range found {
		have[strings.ToLower(f)] = true
	}
	var out []string
	for _, s := range declared {
		if !have[strings.ToLower(s.Name)] {
			out = append(out, s.Name)
		}
	}
	return out
}

func cvPrompt(text string, found []string) string {
	var b strings.Builder
	b.WriteString("Review this student CV. Give an overall_score from 0 to 100, strengths, improvements, keywords_found, keywords_missing ")
	b.WriteString("and sections_analysis keyed by section name (contact, education, experience, skills, projects) with present, score and comment. ")
	b.WriteString("Respond with JSON only.\n\n")
	if len(found) > 0 {
		fmt.Fprintf(&b, "SKILLS DETECTED: %s\n\n", strings.Join(found, ", "))
	}
	fmt.Fprintf(&b, "CV:\n%s\n", clip(text, 15000))
	return b.String()
}
