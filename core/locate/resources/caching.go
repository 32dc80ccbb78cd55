package resources

import (
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path"

	"github.com/npillmayer/schuko"
)

// defaultAppKey names the cache folder if the configuration has no 'app-key'.
const defaultAppKey = "adoc"

// CacheDirPath checks and possibly creates a folder in the user's cache
// directory. The base cache directory is taken from `os.UserCacheDir()`, plus
// an application specific key, taken as `app-key` from the configuration.
// Clients may specify a sequence of folder names, which will be appended to
// the base cache path. Non-existing sub-folders will be created as necessary
// (with permissions 755).
func CacheDirPath(conf schuko.Configuration, subfolders ...string) (string, error) {
	appkey := defaultAppKey
	if conf != nil && conf.GetString("app-key") != "" {
		appkey = conf.GetString("app-key")
	}
	tracer().Debugf("config[%s] = %s", "app-key", appkey)
	cachedir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	subs := path.Join(subfolders...)
	cachedir = path.Join(cachedir, appkey, subs)
	tracer().Infof("caching in %s", cachedir)
	_, err = os.Stat(cachedir)
	if os.IsNotExist(err) {
		err = os.MkdirAll(cachedir, 0755)
		if err != nil {
			return "", err
		}
	}
	return cachedir, nil
}

// cacheKey is the file name of a cached URI.
func cacheKey(uri string) string {
	h := sha1.Sum([]byte(uri))
	return hex.EncodeToString(h[:]) + path.Ext(uri)
}
