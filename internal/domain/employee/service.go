package employee

import (
	"context"
	"io"
)

type EmployeeService interface {
	List(ctx context.Context, filter ListFilter) (ListEmployeeResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	Me(ctx context.Context) (EmployeeResponse, error)
	UpdateMyPrivateInfo(ctx context.Context, req UpdatePrivateInfoRequest) (EmployeeResponse, error)
	UploadAvatar(ctx context.Context, req UploadAvatarRequest) (AvatarResponse, error)
	DeleteAvatar(ctx context.Context) (AvatarResponse, error)

	ListMySkills(ctx context.Context) ([]SkillResponse, error)
	AddMySkill(ctx context.Context, req AddSkillRequest) (SkillResponse, error)
	DeleteMySkill(ctx context.Context, id string) error

	ListMyCertifications(ctx context.Context) ([]CertificationResponse, error)
	AddMyCertification(ctx context.Context, req AddCertificationRequest) (CertificationResponse, error)
	UpdateMyCertification(ctx context.Context, id string, req UpdateCertificationRequest) (CertificationResponse, error)
	DeleteMyCertification(ctx context.Context, id string) error

	GetMyPrivateInfo(ctx context.Context) (PrivateInfoResponse, error)
	// UpdateMyPrivateInfoSensitive writes personal fields and upserts bank details in one transaction.
	UpdateMyPrivateInfoSensitive(ctx context.Context, req UpdateSensitiveInfoRequest) (PrivateInfoResponse, error)
}

// UploadAvatarRequest carries a multipart file already bounded by the handler.
type UploadAvatarRequest struct {
	File        io.Reader
	Filename    string
	ContentType string
	Size        int64
}
