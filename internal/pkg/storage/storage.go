package storage

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	// ErrInvalidObjectName 对象名非法
	ErrInvalidObjectName = errors.New("invalid object name")
	// ErrObjectNotFound 对象不存在
	ErrObjectNotFound = errors.New("object not found")
	// ErrInvalidToken 签名 URL 校验失败
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Store 本地磁盘对象存储，提供公开 URL 与限时签名 URL 两种访问方式。
// 签名 URL 为携带对象名与过期时间的 HS256 JWT，过期后自动失效。
type Store struct {
	dir     string
	bucket  string
	baseURL string
	secret  []byte
	expiry  time.Duration
}

// NewStore 创建对象存储实例并确保目录存在
func NewStore(dir, bucket, baseURL, secret string, expiry time.Duration) (*Store, error) {
	root := filepath.Join(dir, bucket)
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &Store{
		dir:     dir,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  []byte(secret),
		expiry:  expiry,
	}, nil
}

// Bucket 返回桶名
func (s *Store) Bucket() string {
	return s.bucket
}

// DefaultExpiry 返回签名 URL 默认有效期
func (s *Store) DefaultExpiry() time.Duration {
	return s.expiry
}

// Upload 按对象名写入内容，已存在时覆盖
func (s *Store) Upload(name string, r io.Reader) (int64, error) {
	path, err := s.objectPath(name)
	if err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create object: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("failed to write object: %w", err)
	}
	return n, nil
}

// Open 打开对象内容，调用方负责关闭
func (s *Store) Open(name string) (io.ReadSeekCloser, error) {
	path, err := s.objectPath(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return f, nil
}

// Path 返回对象的磁盘路径，对象不存在时返回 ErrObjectNotFound
func (s *Store) Path(name string) (string, error) {
	path, err := s.objectPath(name)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", ErrObjectNotFound
		}
		return "", err
	}
	return path, nil
}

// Delete 删除对象，不存在时视为成功
func (s *Store) Delete(name string) error {
	path, err := s.objectPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// PublicURL 返回对象的公开访问地址
func (s *Store) PublicURL(name string) string {
	return fmt.Sprintf("%s/storage/%s/%s", s.baseURL, s.bucket, url.PathEscape(name))
}

// SignedURL 返回限时签名地址，expiry<=0 时使用默认有效期
func (s *Store) SignedURL(name string, expiry time.Duration) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	if expiry <= 0 {
		expiry = s.expiry
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"obj": name,
		"exp": time.Now().Add(expiry).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign url: %w", err)
	}
	return fmt.Sprintf("%s/storage/sign/%s/%s?token=%s", s.baseURL, s.bucket, url.PathEscape(name), signed), nil
}

// VerifyToken 校验签名 URL 携带的 token 是否匹配对象且未过期
func (s *Store) VerifyToken(name, tokenStr string) error {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ErrInvalidToken
	}
	obj, _ := claims["obj"].(string)
	if obj == "" || obj != name {
		return ErrInvalidToken
	}
	return nil
}

func (s *Store) objectPath(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, s.bucket, name), nil
}

// validateName 对象名只允许单层文件名，防止路径穿越
func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return ErrInvalidObjectName
	}
	return nil
}
