package mocks

//go:generate mockery --name Store --srcpkg github.com/aevon-lab/reorder-features/internal/core/storage --output ./storage --outpkg storagemocks
